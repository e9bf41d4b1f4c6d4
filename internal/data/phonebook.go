package data

import (
	"context"
	"net/http"
	"net/url"
)

const pathPhonebook = "/api/v1/phonebook"

// CreateContact stores a new contact and returns it with its server-assigned id.
// Callers validate the request first; see package validate.
func (c *Client) CreateContact(ctx context.Context, req CreateContactRequest) (*Contact, error) {
	var created Contact
	err := c.do(ctx, call{
		svc:    ServicePhonebook,
		method: http.MethodPost,
		path:   pathPhonebook,
		in:     req,
		out:    &created,
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ContactsByOwner lists every contact owned by ownerEmail.
func (c *Client) ContactsByOwner(ctx context.Context, ownerEmail string) ([]Contact, error) {
	var res []Contact
	err := c.do(ctx, call{
		svc:    ServicePhonebook,
		method: http.MethodGet,
		path:   pathPhonebook + "/owner/" + url.PathEscape(ownerEmail),
		out:    &res,
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// UpdateContact always fails: the phonebook service has no update endpoint.
func (c *Client) UpdateContact(ctx context.Context, id RecordID, req CreateContactRequest) (*Contact, error) {
	return nil, ErrUnsupported
}

// DeleteContact always fails: the phonebook service has no delete endpoint.
func (c *Client) DeleteContact(ctx context.Context, id RecordID) error {
	return ErrUnsupported
}
