package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/mandibook/mandiledger/internal/domain"
)

// Client implements usecase.RemoteMirror against the cloud sync backend's
// JSON API. Transient failures retry with exponential backoff; the caller
// decides what a final failure means.
type Client struct {
	baseURL    string
	httpClient *http.Client
	authToken  string
	logger     zerolog.Logger
	maxRetries uint64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithAuthToken sets the bearer token sent on every request.
func WithAuthToken(token string) Option {
	return func(cl *Client) { cl.authToken = token }
}

// NewClient creates a new mirror client.
func NewClient(baseURL string, logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger.With().Str("component", "mirror").Logger(),
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Upload mirrors one transaction.
func (c *Client) Upload(ctx context.Context, userID string, txn *domain.Transaction) error {
	body, err := json.Marshal(envelopeFromDomain(txn))
	if err != nil {
		return fmt.Errorf("encode transaction: %w", err)
	}

	path := fmt.Sprintf("/users/%s/transactions/%s", url.PathEscape(userID), url.PathEscape(txn.ID()))

	return c.doWithRetry(ctx, http.MethodPut, path, body, nil)
}

// UploadBatch mirrors a chunk of transactions in one request. The caller
// keeps chunks below the backend's batch cap.
func (c *Client) UploadBatch(ctx context.Context, userID string, txns []*domain.Transaction) error {
	envelopes := make([]envelope, 0, len(txns))
	for _, txn := range txns {
		envelopes = append(envelopes, envelopeFromDomain(txn))
	}

	body, err := json.Marshal(batchRequest{Transactions: envelopes})
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}

	path := fmt.Sprintf("/users/%s/transactions/batch", url.PathEscape(userID))

	return c.doWithRetry(ctx, http.MethodPost, path, body, nil)
}

// Delete removes a mirrored transaction.
func (c *Client) Delete(ctx context.Context, userID string, txType domain.TransactionType, id string) error {
	path := fmt.Sprintf("/users/%s/transactions/%s", url.PathEscape(userID), url.PathEscape(id))

	err := c.doWithRetry(ctx, http.MethodDelete, path, nil, nil)

	var httpErr *StatusError
	// A copy the mirror never had is already deleted.
	if errors.As(err, &httpErr) && httpErr.Code == http.StatusNotFound {
		return nil
	}

	return err
}

// FetchAll downloads the full mirrored ledger for a user.
func (c *Client) FetchAll(ctx context.Context, userID string) ([]*domain.RemoteTransaction, error) {
	path := fmt.Sprintf("/users/%s/transactions", url.PathEscape(userID))

	var resp fetchResponse
	if err := c.doWithRetry(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	remotes := make([]*domain.RemoteTransaction, 0, len(resp.Transactions))
	for _, rt := range resp.Transactions {
		txn, err := rt.Transaction.toDomain()
		if err != nil {
			c.logger.Warn().Err(err).Str("remote_id", rt.RemoteID).Msg("skipping malformed remote transaction")
			continue
		}
		remotes = append(remotes, &domain.RemoteTransaction{
			RemoteID:    rt.RemoteID,
			SyncedAt:    rt.SyncedAt,
			Transaction: *txn,
		})
	}

	return remotes, nil
}

// StatusError is a non-2xx response from the mirror.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("mirror responded %d: %s", e.Code, e.Body)
}

func (c *Client) doWithRetry(ctx context.Context, method, path string, body []byte, out any) error {
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)

	return backoff.Retry(func() error {
		err := c.do(ctx, method, path, body, out)
		if err == nil {
			return nil
		}

		var httpErr *StatusError
		if errors.As(err, &httpErr) && httpErr.Code >= 400 && httpErr.Code < 500 {
			// Client errors never heal on retry.
			return backoff.Permanent(err)
		}

		c.logger.Debug().Err(err).Str("method", method).Str("path", path).Msg("mirror request retrying")

		return err
	}, b)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: string(raw)}
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}

	return nil
}

type batchRequest struct {
	Transactions []envelope `json:"transactions"`
}

type fetchResponse struct {
	Transactions []remoteEnvelope `json:"transactions"`
}

type remoteEnvelope struct {
	RemoteID    string    `json:"remoteId"`
	SyncedAt    time.Time `json:"syncedAt"`
	Transaction envelope  `json:"transaction"`
}
