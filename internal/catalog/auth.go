package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// Login exchanges a username and password for a token and stores it in the
// client's credential holder.
func (c *Client) Login(ctx context.Context, username, password string) error {
	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal login request: %w", err)
	}

	var resp struct {
		Token       string `json:"token"`
		AccessToken string `json:"access_token"`
	}
	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/login",
		body:        bytes.NewReader(payload),
		contentType: "application/json",
	}, &resp)

	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized:
		if apiErr.Message != "" {
			return fmt.Errorf("%w: %s", ErrInvalidCredentials, apiErr.Message)
		}
		return ErrInvalidCredentials
	case errors.As(err, &apiErr):
		return fmt.Errorf("login failed: server error (%d): %s", apiErr.StatusCode, apiErr.Message)
	case err != nil:
		return fmt.Errorf("login failed: %w", err)
	}

	token := resp.Token
	if token == "" {
		token = resp.AccessToken
	}
	if token == "" {
		return fmt.Errorf("login failed: response did not include a token")
	}

	if err := c.credentials.Set(token, username); err != nil {
		return err
	}
	slog.Info("Logged in", "username", username)
	return nil
}

// Logout forgets the stored token. The catalog keeps no server-side session.
func (c *Client) Logout() error {
	return c.credentials.Clear()
}
