package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jaigner-hub/msgdesk/internal/assist"
)

var chatCmd = &cobra.Command{
	Use:   "chat <prompt>",
	Short: "Ask the chat-assist service a question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}
		return runChat(cmd.Context(), e, cmd.OutOrStdout(), strings.Join(args, " "))
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the chat-assist models",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		listModels(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(modelsCmd)
}

func runChat(ctx context.Context, e *env, w io.Writer, prompt string) error {
	a := assist.New("")
	if err := a.SelectModel(e.cfg.ChatModel); err != nil {
		return err
	}
	a.Prompt = prompt
	req, err := a.Submit(e.session.Email())
	if err != nil {
		return err
	}
	resp, err := e.client.Chat(ctx, req)
	entry := a.Resolve(resp, err)
	if entry.Kind == assist.KindError {
		if err != nil {
			return fmt.Errorf("chat: %w", err)
		}
		return errors.New("chat: " + entry.Text)
	}
	fmt.Fprintln(w, entry.Text)
	return nil
}

func listModels(w io.Writer) {
	for _, name := range assist.Models {
		marker := "  "
		if name == assist.DefaultModel {
			marker = "* "
		}
		fmt.Fprintf(w, "%s%-30s %s\n", marker, name, assist.ModelAlias(name))
	}
}
