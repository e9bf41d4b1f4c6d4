package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jaigner-hub/msgdesk/internal/data"
	"github.com/jaigner-hub/msgdesk/internal/history"
)

var historyFormat string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show your most recent sent messages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}
		return runHistory(cmd.Context(), e, cmd.OutOrStdout(), historyFormat, time.Now())
	},
}

func init() {
	historyCmd.Flags().StringVarP(&historyFormat, "output", "o", "text", "output format: text or yaml")
	rootCmd.AddCommand(historyCmd)
}

type historyItem struct {
	ID         string    `yaml:"id"`
	SentAt     time.Time `yaml:"sent_at"`
	Recipients []string  `yaml:"recipients,omitempty"`
	Body       string    `yaml:"body"`
}

func runHistory(ctx context.Context, e *env, w io.Writer, format string, now time.Time) error {
	store := history.New()
	if err := store.Refresh(ctx, e.client, e.session.Email()); err != nil {
		return err
	}
	items := store.Items()

	switch format {
	case "yaml":
		out := make([]historyItem, len(items))
		for i, it := range items {
			out[i] = historyItem{ID: it.ID, SentAt: it.SentAt, Recipients: it.Recipients, Body: data.Sanitize(it.Body)}
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encode history: %w", err)
		}
		return enc.Close()
	case "text", "":
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	if len(items) == 0 {
		fmt.Fprintln(w, "No messages sent yet.")
		return nil
	}
	for i, it := range items {
		if i > 0 {
			fmt.Fprintln(w)
		}
		stamp := "unknown time"
		if !it.SentAt.IsZero() {
			stamp = humanize.RelTime(it.SentAt, now, "ago", "from now")
		}
		fmt.Fprintf(w, "#%s  %s\n", it.ID, stamp)
		if len(it.Recipients) > 0 {
			fmt.Fprintf(w, "To: %s\n", strings.Join(it.Recipients, ", "))
		}
		fmt.Fprintln(w, data.Sanitize(it.Body))
	}
	return nil
}
