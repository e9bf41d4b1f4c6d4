// Package addressbook is the contact list view model: search, Korean-aware
// name ordering and validated creation against the phonebook service.
package addressbook

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/jaigner-hub/msgdesk/internal/data"
	"github.com/jaigner-hub/msgdesk/internal/validate"
)

// Service is the phonebook collaborator.
type Service interface {
	CreateContact(ctx context.Context, req data.CreateContactRequest) (*data.Contact, error)
	ContactsByOwner(ctx context.Context, ownerEmail string) ([]data.Contact, error)
}

// Order is the name sort direction.
type Order int

const (
	Ascending Order = iota
	Descending
)

func (o Order) String() string {
	if o == Descending {
		return "Z-A"
	}
	return "A-Z"
}

// Draft is the add-contact form.
type Draft struct {
	Name    string
	Phone   string
	Carrier string
}

// Request validates d for owner. Nothing may be sent when it fails.
func (d Draft) Request(owner string) (data.CreateContactRequest, error) {
	return validate.Contact(owner, d.Name, d.Phone, d.Carrier)
}

// Book holds one owner's contacts.
type Book struct {
	contacts []data.Contact
	search   string
	order    Order
	coll     *collate.Collator
}

// New returns an empty book.
func New() *Book {
	return &Book{coll: collate.New(language.Korean, collate.Loose)}
}

// Replace installs the full list fetched from the service.
func (b *Book) Replace(cs []data.Contact) {
	b.contacts = append([]data.Contact(nil), cs...)
}

// Add appends a contact returned by a successful create.
func (b *Book) Add(c data.Contact) {
	b.contacts = append(b.contacts, c)
}

// Edit is not offered by the phonebook service.
func (b *Book) Edit(id data.RecordID, d Draft) error {
	return fmt.Errorf("edit contact %s: %w", id, data.ErrUnsupported)
}

// Delete is not offered by the phonebook service.
func (b *Book) Delete(id data.RecordID) error {
	return fmt.Errorf("delete contact %s: %w", id, data.ErrUnsupported)
}

func (b *Book) SetSearch(s string) { b.search = s }
func (b *Book) Search() string     { return b.search }
func (b *Book) Order() Order       { return b.order }
func (b *Book) Len() int           { return len(b.contacts) }

// ToggleSort flips between A-Z and Z-A.
func (b *Book) ToggleSort() Order {
	if b.order == Ascending {
		b.order = Descending
	} else {
		b.order = Ascending
	}
	return b.order
}

// Visible returns the contacts matching the search term, ordered by name.
// Names match case-insensitively, phone numbers as substrings.
func (b *Book) Visible() []data.Contact {
	term := strings.ToLower(strings.TrimSpace(b.search))
	out := make([]data.Contact, 0, len(b.contacts))
	for _, c := range b.contacts {
		if term == "" || strings.Contains(strings.ToLower(c.ContactName), term) || strings.Contains(c.PhoneNumber, term) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		cmp := b.coll.CompareString(out[i].ContactName, out[j].ContactName)
		if b.order == Descending {
			return cmp > 0
		}
		return cmp < 0
	})
	return out
}

// Reset empties the book, e.g. on logout.
func (b *Book) Reset() {
	b.contacts = nil
	b.search = ""
	b.order = Ascending
}

// PhoneNumbers lists the numbers of cs in order.
func PhoneNumbers(cs []data.Contact) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.PhoneNumber)
	}
	return out
}

// Load fetches owner's contacts into b.
func Load(ctx context.Context, svc Service, b *Book, owner string) error {
	cs, err := svc.ContactsByOwner(ctx, owner)
	if err != nil {
		return err
	}
	b.Replace(cs)
	return nil
}

// Create validates d and, only if it is valid, creates the contact.
func Create(ctx context.Context, svc Service, owner string, d Draft) (*data.Contact, error) {
	req, err := d.Request(owner)
	if err != nil {
		return nil, err
	}
	return svc.CreateContact(ctx, req)
}
