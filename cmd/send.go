package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jaigner-hub/msgdesk/internal/addressbook"
	"github.com/jaigner-hub/msgdesk/internal/composer"
)

var (
	sendTo          string
	sendAllContacts bool
)

var sendCmd = &cobra.Command{
	Use:   "send [flags] <message>",
	Short: "Send a message to one or more phone numbers",
	Example: `  msgdesk send --to "010-1234-5678, 010-9876-5432" "Meeting moved to 3pm"
  msgdesk send --all-contacts "Office closed Friday"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}
		return runSend(cmd.Context(), e, cmd.OutOrStdout(), sendTo, strings.Join(args, " "), sendAllContacts)
	},
}

func init() {
	sendCmd.Flags().StringVarP(&sendTo, "to", "t", "", "recipients, separated by commas or spaces")
	sendCmd.Flags().BoolVar(&sendAllContacts, "all-contacts", false, "also send to every number in the address book")
	rootCmd.AddCommand(sendCmd)
}

func runSend(ctx context.Context, e *env, w io.Writer, to, body string, allContacts bool) error {
	owner := e.session.Email()
	c := composer.New()
	c.SetDraft(to, body)
	if allContacts {
		book := addressbook.New()
		if err := addressbook.Load(ctx, e.client, book, owner); err != nil {
			return err
		}
		c.AppendRecipients(addressbook.PhoneNumbers(book.Visible())...)
	}

	req, err := c.Submit(owner)
	if err != nil {
		return err
	}
	if err := e.client.SendMessage(ctx, req); err != nil {
		c.Fail(err)
		return fmt.Errorf("send message: %w", err)
	}
	c.Succeed()
	fmt.Fprintln(w, c.Notice())
	return nil
}
