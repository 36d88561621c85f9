package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bookshelf/internal/util"
	"bookshelf/pkg/domain"
)

// GenericErrorMessage is shown when the server supplies no usable message.
const GenericErrorMessage = "An error occurred. Please try again."

// Client calls the remote book API over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// APIError represents a book API error response.
type APIError struct {
	Status  int
	Message string
	Code    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Message extracts the best human-readable string from an operation error:
// the server-supplied message when the error is an *APIError, the generic
// fallback otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := err.(*APIError); ok && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	return GenericErrorMessage
}

// NewClient constructs a book API client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Register creates an account and returns the issued bearer token. A
// successful registration also implies login.
func (c *Client) Register(ctx context.Context, email, password string) (string, error) {
	payload := map[string]string{"email": email, "password": password}
	var resp tokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/book/register", "", payload, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	payload := map[string]string{"email": email, "password": password}
	var resp tokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/book/login", "", payload, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// ListBooks returns the full collection in server order.
func (c *Client) ListBooks(ctx context.Context, token string) ([]domain.Book, error) {
	var books []domain.Book
	if err := c.doJSON(ctx, http.MethodGet, "/api/book", token, nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// AddBook creates a record and returns the server's canonical copy,
// including the assigned ID.
func (c *Client) AddBook(ctx context.Context, token, title, author string) (domain.Book, error) {
	payload := map[string]string{"title": title, "author": author}
	var resp addBookResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/book", token, payload, &resp); err != nil {
		return domain.Book{}, err
	}
	return resp.Book, nil
}

// DeleteBook removes the record with the given ID.
func (c *Client) DeleteBook(ctx context.Context, token, id string) error {
	path := fmt.Sprintf("/api/book/%s", id)
	return c.doJSON(ctx, http.MethodDelete, path, token, nil, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Request-ID", util.NewRequestID())
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp struct {
			Message string `json:"message"`
			Error   string `json:"error"`
			Code    string `json:"code"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		msg := errResp.Message
		if msg == "" {
			msg = errResp.Error
		}
		if msg == "" {
			msg = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Message: msg, Code: strings.TrimSpace(errResp.Code)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return err
	}
	return nil
}

type tokenResponse struct {
	Token string `json:"token"`
}

type addBookResponse struct {
	Book domain.Book `json:"book"`
}
