package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gennadis/poshana/internal/chat"
)

var (
	// Styles for history and show output
	sessionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				MarginBottom(1)

	sessionIDStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sessionMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243"))
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List your conversations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl := newOneShotController()
		if err := loadHistory(ctrl); err != nil {
			return err
		}

		sessions := ctrl.Sessions()
		out := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No conversations yet.")
			return nil
		}

		fmt.Fprintln(out, sessionHeaderStyle.Render(fmt.Sprintf("%d conversations for user %s", len(sessions), cfg.UserID)))
		for _, sess := range sessions {
			fmt.Fprintf(out, "%s  %s  %s\n",
				sessionIDStyle.Render(sess.ID),
				sess.Title(),
				sessionMetaStyle.Render(describe(sess)),
			)
		}
		return nil
	},
}

func describe(sess chat.Session) string {
	n := len(sess.Messages)
	if n == 0 {
		return "empty"
	}
	last := sess.Messages[n-1].Timestamp
	if last.IsZero() {
		return fmt.Sprintf("%d messages", n)
	}
	return fmt.Sprintf("%d messages, last %s", n, last.Local().Format("2006-01-02 15:04"))
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
