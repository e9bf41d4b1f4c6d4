package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jaigner-hub/msgdesk/internal/addressbook"
	"github.com/jaigner-hub/msgdesk/internal/data"
)

var (
	contactsSearch string
	contactsDesc   bool
	contactDraft   addressbook.Draft
)

var contactsCmd = &cobra.Command{
	Use:     "contacts",
	Aliases: []string{"phonebook"},
	Short:   "Manage your address book",
}

var contactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contacts, sorted by name",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}
		return runContactsList(cmd.Context(), e, cmd.OutOrStdout(), contactsSearch, contactsDesc)
	},
}

var contactsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a contact",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}
		return runContactsAdd(cmd.Context(), e, cmd.OutOrStdout(), contactDraft)
	},
}

var contactsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a contact (not offered by the phonebook service)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return addressbook.New().Edit(data.RecordID(args[0]), contactDraft)
	},
}

var contactsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a contact (not offered by the phonebook service)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return addressbook.New().Delete(data.RecordID(args[0]))
	},
}

func init() {
	contactsListCmd.Flags().StringVarP(&contactsSearch, "search", "s", "", "filter by name or phone number")
	contactsListCmd.Flags().BoolVar(&contactsDesc, "desc", false, "sort Z-A")

	for _, c := range []*cobra.Command{contactsAddCmd, contactsEditCmd} {
		c.Flags().StringVar(&contactDraft.Name, "name", "", "contact name")
		c.Flags().StringVar(&contactDraft.Phone, "phone", "", "phone number, e.g. 010-1234-5678")
		c.Flags().StringVar(&contactDraft.Carrier, "carrier", "", "carrier: SKT, KT, LG or MVNO")
	}

	contactsCmd.AddCommand(contactsListCmd, contactsAddCmd, contactsEditCmd, contactsDeleteCmd)
	rootCmd.AddCommand(contactsCmd)
}

func runContactsList(ctx context.Context, e *env, w io.Writer, search string, desc bool) error {
	book := addressbook.New()
	if err := addressbook.Load(ctx, e.client, book, e.session.Email()); err != nil {
		return err
	}
	book.SetSearch(search)
	if desc {
		book.ToggleSort()
	}

	visible := book.Visible()
	if len(visible) == 0 {
		fmt.Fprintln(w, "No contacts.")
		return nil
	}
	const nameW, phoneW = 20, 15
	fmt.Fprintln(w, addressbook.Cell("NAME", nameW)+"  "+addressbook.Cell("PHONE", phoneW)+"  CARRIER")
	for _, c := range visible {
		fmt.Fprintln(w, strings.TrimRight(addressbook.Row(c, nameW, phoneW), " "))
	}
	fmt.Fprintf(w, "\n%s of %s contacts, %s\n",
		humanize.Comma(int64(len(visible))), humanize.Comma(int64(book.Len())), book.Order())
	return nil
}

func runContactsAdd(ctx context.Context, e *env, w io.Writer, d addressbook.Draft) error {
	c, err := addressbook.Create(ctx, e.client, e.session.Email(), d)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Saved %s (%s, %s) as #%s\n", c.ContactName, c.PhoneNumber, c.Carrier, c.ID)
	return nil
}
