package data

import (
	"context"
	"net/http"
)

const (
	pathSignup = "/api/v1/auth/signup"
	pathLogin  = "/api/v1/auth/login"
)

// Signup creates an account. A 409 (see IsConflict) means the email is taken.
func (c *Client) Signup(ctx context.Context, creds Credentials) error {
	return c.do(ctx, call{
		svc:    ServiceAuth,
		method: http.MethodPost,
		path:   pathSignup,
		in:     creds,
	})
}

// Login checks the credentials and reports whether they are valid.
func (c *Client) Login(ctx context.Context, creds Credentials) (bool, error) {
	var res LoginResult
	err := c.do(ctx, call{
		svc:    ServiceAuth,
		method: http.MethodPost,
		path:   pathLogin,
		in:     creds,
		out:    &res,
	})
	if err != nil {
		return false, err
	}
	return res.Valid, nil
}
