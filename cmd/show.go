package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gennadis/poshana/internal/tui"
)

var showWidth int

var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print the messages of a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]

		ctrl := newOneShotController()
		if err := loadHistory(ctrl); err != nil {
			return err
		}
		if err := ctrl.LoadSession(sessionID); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, sessionHeaderStyle.Render("Conversation "+sessionID))
		fmt.Fprint(out, tui.RenderMessages(ctrl.Messages(), tui.NewRenderer(showWidth)))
		return nil
	},
}

func init() {
	showCmd.Flags().IntVar(&showWidth, "width", 80, "Wrap assistant replies at this width")
	rootCmd.AddCommand(showCmd)
}
