package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gennadis/poshana/internal/controller"
	"github.com/gennadis/poshana/internal/session"
	"github.com/gennadis/poshana/internal/tui"
)

var sendSessionID string

var sendCmd = &cobra.Command{
	Use:   "send <message>",
	Short: "Send one message and print the reply",
	Long: `Send one message and print the assistant reply.

Without --session the service starts a new conversation and its id is
printed so it can be continued later. An id printed by "new" can be used
with --session before the conversation has any messages.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		if strings.TrimSpace(text) == "" {
			return errors.New("message must not be blank")
		}

		ctrl := newOneShotController()
		ctrl.Init()
		if sendSessionID != "" {
			if err := loadHistory(ctrl); err != nil {
				return err
			}
			var notFound *session.NotFoundError
			if err := ctrl.LoadSession(sendSessionID); errors.As(err, &notFound) {
				// fresh sessions are only listed after their first message
				slog.Debug("session not in history, resuming it", "session_id", sendSessionID)
				ctrl.Resume(sendSessionID)
			} else if err != nil {
				return err
			}
		}

		msg := run(ctrl, ctrl.SendMessage(text))
		if sent, ok := msg.(controller.MessageSentMsg); ok && sent.Err != nil {
			return fmt.Errorf("failed to send message: %w", sent.Err)
		}

		messages := ctrl.Messages()
		out := cmd.OutOrStdout()
		fmt.Fprint(out, tui.RenderMessages(messages[len(messages)-1:], tui.NewRenderer(showWidth)))
		if id, ok := ctrl.ActiveSessionID(); ok {
			fmt.Fprintln(out, sessionMetaStyle.Render("session "+id))
		}
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVarP(&sendSessionID, "session", "s", "", "Continue this conversation")
	rootCmd.AddCommand(sendCmd)
}
