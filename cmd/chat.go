package main

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/gennadis/poshana/internal/controller"
	"github.com/gennadis/poshana/internal/logging"
	"github.com/gennadis/poshana/internal/tui"
	"github.com/gennadis/poshana/internal/voice"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat",
	Long: `Open the interactive chat.

Keys:
  enter     send the message          tab     browse conversations
  ctrl+n    start a new conversation  ctrl+l  clear the conversation
  ctrl+r    dictate a message         ctrl+s  read the last reply aloud
  ctrl+x    stop voice                ctrl+y  copy the conversation
  esc       quit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logFile, err := logging.OpenFile(cfg.LogFile)
		if err != nil {
			return err
		}
		defer logFile.Close()
		if err := logging.Setup(logFile, cfg.LogLevel); err != nil {
			return err
		}

		var opts []controller.Option
		slots, closeDB, err := openSlots()
		if err != nil {
			slog.Warn("Chat log will not be mirrored", "error", err)
		} else {
			defer closeDB()
			opts = append(opts, controller.WithMirror(slots))
		}

		bridge := voice.NewBridge(voice.NewRecognizer(cfg.Recognizer), voice.NewSynthesizer(cfg.Synthesizer))
		defer bridge.Stop()

		model := tui.New(newController(opts...), cfg.Lang, tui.WithVoice(bridge))
		if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
			return fmt.Errorf("chat ended: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
