// Package marketplace talks to the remote marketplace API for accounts, stores and products.
package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/georgemunganga/storefront-client/internal/modules/cart"
)

const defaultTimeout = 15 * time.Second

// Client calls the marketplace API. Calls are never retried.
type Client struct {
	baseURL string
	client  *http.Client
	log     *logrus.Entry
}

func NewClient(baseURL string, timeout time.Duration, log *logrus.Entry) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     log.WithField("module", "marketplace"),
	}
}

// CheckUsername reports whether username is still free.
func (c *Client) CheckUsername(ctx context.Context, username string) (bool, error) {
	var out usernameCheck
	path := "/auth/check-username?username=" + url.QueryEscape(username)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return false, err
	}
	return out.Available, nil
}

// AuthenticateUser logs in and returns the account profile with its session token.
func (c *Client) AuthenticateUser(ctx context.Context, creds Credentials) (*Session, error) {
	var out Session
	if err := c.do(ctx, http.MethodPost, "/auth/login", creds, &out); err != nil {
		return nil, err
	}
	fillSubject(&out)
	return &out, nil
}

// CreateUser registers an account. fields is passed through as the registration body.
func (c *Client) CreateUser(ctx context.Context, fields map[string]any) (*Session, error) {
	var out Session
	if err := c.do(ctx, http.MethodPost, "/auth/register", fields, &out); err != nil {
		return nil, err
	}
	fillSubject(&out)
	return &out, nil
}

func (c *Client) FetchStores(ctx context.Context) ([]Store, error) {
	var out []Store
	if err := c.do(ctx, http.MethodGet, "/stores", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) FetchProductsByStoreID(ctx context.Context, storeID string) ([]cart.Product, error) {
	if storeID == "" {
		return nil, &APIError{Message: "store id is required"}
	}
	var out []cart.Product
	if err := c.do(ctx, http.MethodGet, "/stores/"+url.PathEscape(storeID)+"/products", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// do sends one request and unwraps the envelope into dst.
func (c *Client) do(ctx context.Context, method, path string, body, dst any) error {
	start := time.Now()
	log := c.log.WithFields(logrus.Fields{"method": method, "path": path})

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return &APIError{Message: "could not encode request", cause: errors.Wrap(err, "encode request")}
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &APIError{Message: "could not build request", cause: errors.Wrapf(err, "build %s %s", method, path)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		log.WithError(err).Warn("marketplace unreachable")
		return &APIError{Message: "marketplace is unreachable", cause: errors.Wrapf(err, "%s %s", method, path)}
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)
	log = log.WithFields(logrus.Fields{"status": resp.StatusCode, "took": time.Since(start)})

	switch {
	case decodeErr == nil && !env.Success:
		log.WithField("error", env.Error).Info("marketplace rejected request")
		return &APIError{Message: messageOr(env.Error, resp.StatusCode)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		log.Info("marketplace returned an error status")
		return &APIError{Message: messageOr(env.Error, resp.StatusCode)}
	case decodeErr != nil:
		log.WithError(decodeErr).Warn("malformed marketplace response")
		return &APIError{Message: "malformed marketplace response", cause: errors.Wrap(decodeErr, "decode envelope")}
	}

	log.Debug("marketplace call done")
	if dst == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		return &APIError{Message: "unexpected marketplace data", cause: errors.Wrap(err, "decode data")}
	}
	return nil
}

func messageOr(msg string, status int) string {
	if msg != "" {
		return msg
	}
	return fmt.Sprintf("marketplace request failed (%d %s)", status, http.StatusText(status))
}

// fillSubject sets a missing profile id from the token's sub claim. The token is not
// verified; the client holds no signing key.
func fillSubject(s *Session) {
	if s.Token == "" {
		return
	}
	if s.User == nil {
		s.User = map[string]any{}
	}
	if id, _ := s.User["_id"].(string); id != "" {
		return
	}
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(s.Token, claims); err != nil {
		return
	}
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		s.User["_id"] = sub
	}
}
