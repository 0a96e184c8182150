// Package identity talks to the external identity provider. The core never
// stores or checks login credentials; it only needs the stable subject id the
// provider assigns at signup.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	ErrEmailTaken          = errors.New("email already registered with identity provider")
	ErrIdentityUnavailable = errors.New("identity provider unavailable")
)

// Provider yields a stable account id for a new user. Implemented by Client;
// faked in tests.
type Provider interface {
	CreateUser(ctx context.Context, email, password string) (string, error)
}

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *logrus.Entry
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     logrus.WithField("component", "identity"),
	}
}

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createUserResponse struct {
	ID string `json:"id"`
}

func (c *Client) CreateUser(ctx context.Context, email, password string) (string, error) {
	payload, err := json.Marshal(createUserRequest{Email: email, Password: password})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/admin/users", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.WithError(err).Warn("identity request failed")
		return "", fmt.Errorf("%w: %v", ErrIdentityUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict:
		return "", ErrEmailTaken
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", ErrIdentityUnavailable, resp.StatusCode, body)
	}

	var out createUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: malformed response: %v", ErrIdentityUnavailable, err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("%w: empty subject id", ErrIdentityUnavailable)
	}
	return out.ID, nil
}
