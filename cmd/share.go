package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/gennadis/poshana/internal/chat"
	"github.com/gennadis/poshana/internal/controller"
)

var shareStdout bool

var shareCmd = &cobra.Command{
	Use:   "share [session-id]",
	Short: "Copy a conversation as plain text",
	Long: `Copy a conversation to the clipboard as "You: ..." / "Bot: ..." lines.

Without a session id the conversation last shown in the chat is shared.
When no clipboard is available the text is printed instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var transcript string
		if len(args) == 1 {
			ctrl := newOneShotController()
			if err := loadHistory(ctrl); err != nil {
				return err
			}
			if err := ctrl.LoadSession(args[0]); err != nil {
				return err
			}
			transcript = ctrl.Transcript()
		} else {
			text, err := lastShownTranscript()
			if err != nil {
				return err
			}
			transcript = text
		}

		out := cmd.OutOrStdout()
		if shareStdout || clipboard.Unsupported {
			fmt.Fprintln(out, transcript)
			return nil
		}
		if err := clipboard.WriteAll(transcript); err != nil {
			slog.Warn("Failed to copy to clipboard", "error", err)
			fmt.Fprintln(out, transcript)
			return nil
		}
		fmt.Fprintln(out, "Conversation copied to clipboard")
		return nil
	},
}

func lastShownTranscript() (string, error) {
	slots, closeDB, err := openSlots()
	if err != nil {
		return "", err
	}
	defer closeDB()

	messages, err := slots.Messages(controller.MirrorKey)
	if err != nil {
		return "", err
	}
	if len(messages) == 0 {
		return "", errors.New("nothing to share yet")
	}
	return chat.Transcript(messages), nil
}

func init() {
	shareCmd.Flags().BoolVar(&shareStdout, "stdout", false, "Print instead of copying to the clipboard")
	rootCmd.AddCommand(shareCmd)
}
