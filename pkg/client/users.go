package client

import (
	"context"
	"net/http"

	"devconnector/internal/models"
)

// CurrentUser is the principal behind a token.
type CurrentUser struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPost, "/users/register", "", nil, in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login returns a bearer token ("Bearer <jwt>") for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var res struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/users/login", "", nil, LoginInput{Email: email, Password: password}, &res); err != nil {
		return "", err
	}
	return res.Token, nil
}

// Current returns the account behind token.
func (c *Client) Current(ctx context.Context, token string) (*CurrentUser, error) {
	var user CurrentUser
	if err := c.do(ctx, http.MethodGet, "/users/current", token, nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout revokes token on the server.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/users/logout", token, nil, nil, nil)
}
