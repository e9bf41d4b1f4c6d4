package data

import (
	"context"
	"net/http"
	"net/url"
)

const pathMessages = "/api/v1/messages"

// FetchMessages lists every message owned by userEmail, in server order.
func (c *Client) FetchMessages(ctx context.Context, userEmail string) ([]MessageRecord, error) {
	var rows []MessageRecord
	err := c.do(ctx, call{
		svc:    ServiceMessaging,
		method: http.MethodGet,
		path:   pathMessages,
		query:  url.Values{"userEmail": {userEmail}},
		out:    &rows,
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SendMessage posts a new message. The response body is not needed: the
// console refreshes history afterwards.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) error {
	return c.do(ctx, call{
		svc:    ServiceMessaging,
		method: http.MethodPost,
		path:   pathMessages,
		in:     req,
	})
}
