package data

import (
	"context"
	"net/http"
)

const pathChat = "/api/chat"

// Chat forwards a prompt to the chat-assist service. A decoded response with
// Success=false is returned without error; callers inspect it.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var res ChatResponse
	err := c.do(ctx, call{
		svc:    ServiceChat,
		method: http.MethodPost,
		path:   pathChat,
		in:     req,
		out:    &res,
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}
