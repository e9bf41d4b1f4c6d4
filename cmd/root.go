package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jaigner-hub/msgdesk/internal/config"
	"github.com/jaigner-hub/msgdesk/internal/data"
	"github.com/jaigner-hub/msgdesk/internal/logger"
	"github.com/jaigner-hub/msgdesk/internal/session"
	"github.com/jaigner-hub/msgdesk/internal/ui"
)

var (
	flags   config.Overrides
	version = "dev"
)

// SetVersion sets the version reported by --version.
func SetVersion(v string) { version = v }

var rootCmd = &cobra.Command{
	Use:   "msgdesk",
	Short: "Terminal console for the messaging services",
	Long: `msgdesk is a terminal console for a bulk messaging platform.
It signs you in, sends messages, shows recent history, answers questions
through the chat-assist service, and summarizes usage on a dashboard.

Run without a subcommand to open the interactive console.`,
	RunE:          runTUI,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.ConfigPath, "config", "", "config file (default ~/.msgdesk/config.yaml)")
	pf.StringVar(&flags.EnvFile, "env-file", "", "dotenv file to load (default ./.env if present)")
	pf.StringVar(&flags.AuthURL, "auth-url", "", "auth service base URL")
	pf.StringVar(&flags.MessageURL, "message-url", "", "messaging service base URL")
	pf.StringVar(&flags.DashboardURL, "dashboard-url", "", "dashboard service base URL")
	pf.StringVar(&flags.PhonebookURL, "phonebook-url", "", "phonebook service base URL")
	pf.StringVar(&flags.AgentURL, "agent-url", "", "chat-assist service base URL")
	pf.StringVarP(&flags.UserEmail, "user", "u", "", "account email (pre-fills login; identity for subcommands)")
	pf.StringVar(&flags.ChatModel, "model", "", "chat-assist model")
	pf.DurationVar(&flags.Timeout, "timeout", 0, "per-request timeout")
	pf.StringVar(&flags.LogPath, "log", "", "log file path")
	pf.BoolVar(&flags.Debug, "debug", false, "enable debug logging")
}

// Execute runs the root command. An interrupt cancels in-flight requests.
func Execute() error {
	rootCmd.Version = version
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// setup loads the configuration and starts file logging.
func setup() (config.Config, error) {
	cfg, err := config.Load(flags)
	if err != nil {
		return config.Config{}, err
	}
	if err := logger.Init(cfg.LogPath, cfg.Debug); err != nil {
		// Logging is best effort; the console still works without it.
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	return cfg, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	defer logger.Close()

	m := ui.NewModel(cfg, data.NewClient(cfg))
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithReportFocus())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running console: %w", err)
	}
	return nil
}

// env is what a non-interactive subcommand works with.
type env struct {
	cfg     config.Config
	client  *data.Client
	session *session.Session
}

// newEnv loads the configuration and assumes the configured user, so
// subcommands can act without an interactive login.
func newEnv() (*env, error) {
	cfg, err := setup()
	if err != nil {
		return nil, err
	}
	return envFor(cfg)
}

func envFor(cfg config.Config) (*env, error) {
	if cfg.UserEmail == "" {
		return nil, errors.New("no user configured: pass --user or set MSGDESK_USER")
	}
	sess := session.New()
	if _, err := sess.Assume(cfg.UserEmail); err != nil {
		return nil, err
	}
	return &env{cfg: cfg, client: data.NewClient(cfg), session: sess}, nil
}
