package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/gennadis/poshana/internal/client"
	"github.com/gennadis/poshana/internal/config"
	"github.com/gennadis/poshana/internal/controller"
	"github.com/gennadis/poshana/internal/logging"
	"github.com/gennadis/poshana/storage"
)

var (
	configPath string
	verbose    bool
	baseURL    string
	userID     string

	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "poshana",
	Short: "Terminal client for the Poshana nutrition assistant",
	Long: `Chat with the Poshana nutrition assistant from the terminal.

Conversations are kept by the remote service; this client lists them,
opens them and sends new messages. Voice input and output work when a
recognizer or synthesizer command is configured.

Quick Start:
  poshana chat                      # Interactive chat
  poshana send "Is spinach ok at 8 months?"
  poshana history                   # List your conversations
  poshana show <session-id>         # Print a conversation`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if baseURL != "" {
			loaded.BaseURL = baseURL
		}
		if userID != "" {
			loaded.UserID = userID
		}
		if verbose {
			loaded.LogLevel = "debug"
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		// the TUI owns the terminal and logs to a file instead
		if cmd == chatCmd {
			return nil
		}
		return logging.Setup(cmd.ErrOrStderr(), cfg.LogLevel)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Chat service URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "User id (overrides config)")
}

func newController(opts ...controller.Option) *controller.Controller {
	c := client.NewClient(cfg.BaseURL, cfg.Timeout)
	ctrlCfg := controller.Config{
		UserID:       cfg.UserID,
		Lang:         cfg.Lang,
		RefreshDelay: cfg.RefreshDelay,
	}
	return controller.New(ctrlCfg, c, opts...)
}

// newOneShotController builds a controller for commands that run a single
// operation outside the bubbletea runtime
func newOneShotController() *controller.Controller {
	return newController(controller.WithScheduler(controller.ImmediateScheduler{}))
}

// run executes cmd synchronously and applies its result to ctrl
func run(ctrl *controller.Controller, cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	ctrl.Update(msg)
	return msg
}

// loadHistory fetches the session list into ctrl
func loadHistory(ctrl *controller.Controller) error {
	msg := run(ctrl, ctrl.Refresh())
	if loaded, ok := msg.(controller.HistoryLoadedMsg); ok && loaded.Err != nil {
		return fmt.Errorf("failed to fetch history: %w", loaded.Err)
	}
	return nil
}

func openSlots() (*storage.Slots, func() error, error) {
	db, err := storage.NewSqliteDB(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	slots, err := storage.NewSlots(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return slots, db.Close, nil
}
