package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/gennadis/poshana/internal/controller"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new conversation and print its id",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl := newOneShotController()
		msg := run(ctrl, ctrl.NewSession())
		if created, ok := msg.(controller.SessionCreatedMsg); ok && created.Err != nil {
			return fmt.Errorf("failed to create session: %w", created.Err)
		}
		id, _ := ctrl.ActiveSessionID()
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl := newOneShotController()
		if err := changeSession(ctrl, ctrl.DeleteSession(args[0])); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear <session-id>",
	Short: "Remove every message of a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl := newOneShotController()
		if err := changeSession(ctrl, ctrl.ClearSession(args[0])); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", args[0])
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <session-id> <old-text> <new-text>",
	Short: "Replace the text of a message in a conversation",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl := newOneShotController()
		if err := changeSession(ctrl, ctrl.EditMessage(args[0], args[1], args[2])); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Edited %s\n", args[0])
		return nil
	},
}

func changeSession(ctrl *controller.Controller, cmd tea.Cmd) error {
	msg := run(ctrl, cmd)
	if changed, ok := msg.(controller.SessionChangedMsg); ok && changed.Err != nil {
		return fmt.Errorf("failed to %s session %s: %w", changed.Op, changed.SessionID, changed.Err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(newCmd, deleteCmd, clearCmd, editCmd)
}
