// Package wise fetches profiles, accounts and transactions from the Wise API
// and maps raw transaction records onto canonical rows.
package wise

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"github.com/example/finance-tracker/internal/common"
	"github.com/example/finance-tracker/internal/diagnostic"
)

// Config holds Wise API configuration.
type Config struct {
	BaseURL     string
	Token       string
	ProfileType string
	Timeout     time.Duration
	Retries     int
	HTTPClient  *http.Client
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: wise base URL is required", common.ErrMissingConfig)
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("%w: wise base URL: %v", common.ErrInvalidConfig, err)
	}
	if c.ProfileType == "" {
		return fmt.Errorf("%w: wise profile type is required", common.ErrMissingConfig)
	}
	return nil
}

// Profile is one entry of the profile list.
type Profile struct {
	ID   string
	Type string
}

// Account is one borderless account.
type Account struct {
	ID string
}

// Client implements the TransactionFetcher interface. Every call fails open:
// unusable responses are written to the diagnostic log and surface as an
// error the caller treats as an empty result.
type Client struct {
	http        *http.Client
	diag        diagnostic.Recorder
	logger      *slog.Logger
	retryOpts   common.RetryOptions
	baseURL     string
	token       string
	profileType string
}

// NewClient creates a new Wise client with the given configuration.
func NewClient(cfg Config, diag diagnostic.Recorder) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if diag == nil {
		diag = diagnostic.Discard{}
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	retryOpts := common.DefaultRetryOptions()
	retryOpts.MaxAttempts = cfg.Retries
	if retryOpts.MaxAttempts <= 0 {
		retryOpts.MaxAttempts = 1
	}

	return &Client{
		http:        httpClient,
		diag:        diag,
		logger:      common.Component("wise"),
		retryOpts:   retryOpts,
		baseURL:     cfg.BaseURL,
		token:       cfg.Token,
		profileType: cfg.ProfileType,
	}, nil
}

// SetRetryOptions overrides the backoff used for remote calls.
func (c *Client) SetRetryOptions(opts common.RetryOptions) {
	c.retryOpts = opts
}

// Profiles lists the profiles visible to the credential.
func (c *Client) Profiles(ctx context.Context) ([]Profile, error) {
	items, err := c.getList(ctx, "profiles", "/v1/profiles", nil)
	if err != nil {
		return nil, err
	}

	profiles := make([]Profile, 0, len(items))
	for _, item := range items {
		id := field(item, "$.id")
		if id == "" {
			continue
		}
		profiles = append(profiles, Profile{ID: id, Type: field(item, "$.type")})
	}
	return profiles, nil
}

// Accounts lists the borderless accounts of a profile.
func (c *Client) Accounts(ctx context.Context, profileID string) ([]Account, error) {
	query := url.Values{"profileId": {profileID}}
	items, err := c.getList(ctx, "borderless accounts", "/v1/borderless-accounts", query)
	if err != nil {
		return nil, err
	}

	accounts := make([]Account, 0, len(items))
	for _, item := range items {
		if id := field(item, "$.id"); id != "" {
			accounts = append(accounts, Account{ID: id})
		}
	}
	return accounts, nil
}

// AccountID resolves the first account of the configured profile type.
// It returns common.ErrNoAccount when no profile or account can be found.
func (c *Client) AccountID(ctx context.Context) (string, error) {
	profiles, err := c.Profiles(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrNoAccount, err)
	}

	var profileID string
	for _, p := range profiles {
		if p.Type == c.profileType {
			profileID = p.ID
			break
		}
	}
	if profileID == "" {
		return "", fmt.Errorf("%w: no %s profile", common.ErrNoAccount, c.profileType)
	}

	accounts, err := c.Accounts(ctx, profileID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrNoAccount, err)
	}
	if len(accounts) == 0 {
		return "", fmt.Errorf("%w: profile %s has no borderless accounts", common.ErrNoAccount, profileID)
	}
	return accounts[0].ID, nil
}

// TransactionsPath returns the endpoint path listing an account's transactions.
func TransactionsPath(accountID string) string {
	return "/v1/borderless-accounts/" + url.PathEscape(accountID) + "/transactions"
}

// GetTransactions fetches the raw transaction records of an account in [from, to].
// Records are returned undecoded beyond generic JSON values.
func (c *Client) GetTransactions(ctx context.Context, accountID string, from, to time.Time) ([]any, error) {
	if from.After(to) {
		return nil, fmt.Errorf("start date must be before end date")
	}

	c.logger.Debug("Fetching transactions",
		"url", c.baseURL+TransactionsPath(accountID),
		"from", from.Format(time.RFC3339),
		"to", to.Format(time.RFC3339))

	query := url.Values{
		"type": {"ALL"},
		"from": {from.UTC().Format(time.RFC3339)},
		"to":   {to.UTC().Format(time.RFC3339)},
	}
	items, err := c.getList(ctx, "transactions", TransactionsPath(accountID), query)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Fetched transactions", "count", len(items))
	return items, nil
}

// statusError carries a non-2xx response through the retry loop.
type statusError struct {
	body string
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%v: %d", common.ErrUnexpectedStatus, e.code)
}

func (e *statusError) Unwrap() error {
	return common.ErrUnexpectedStatus
}

// getList performs a GET and requires the body to be a JSON array.
func (c *Client) getList(ctx context.Context, label, path string, query url.Values) ([]any, error) {
	body, err := c.get(ctx, label, path, query)
	if err != nil {
		return nil, err
	}

	var value any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&value); err != nil {
		c.record("Error decoding "+label+" response", string(body))
		return nil, fmt.Errorf("failed to decode %s response: %w: %v", label, common.ErrMalformedResponse, err)
	}
	if dec.More() {
		c.record("Error decoding "+label+" response", string(body))
		return nil, fmt.Errorf("failed to decode %s response: %w: trailing data", label, common.ErrMalformedResponse)
	}

	items, ok := value.([]any)
	if !ok {
		c.record("Unexpected "+label+" response format", string(body))
		return nil, fmt.Errorf("%s response is not a list: %w", label, common.ErrMalformedResponse)
	}
	return items, nil
}

// get performs an authenticated GET, retrying transport failures, 429 and 5xx.
func (c *Client) get(ctx context.Context, label, path string, query url.Values) ([]byte, error) {
	addr := c.baseURL + path
	if len(query) > 0 {
		addr += "?" + query.Encode()
	}

	var body []byte
	err := common.WithRetry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
		if err != nil {
			return fmt.Errorf("failed to build %s request: %w", label, err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &common.RetryableError{Err: fmt.Errorf("failed to request %s: %w", label, err), Retryable: true}
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return &common.RetryableError{Err: fmt.Errorf("failed to read %s response: %w", label, err), Retryable: true}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			serr := &statusError{code: resp.StatusCode, body: string(data)}
			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				return &common.RetryableError{Err: fmt.Errorf("%w: %w", common.ErrRateLimit, serr), Retryable: true}
			case resp.StatusCode >= 500:
				return &common.RetryableError{Err: serr, Retryable: true}
			}
			return serr
		}

		body = data
		return nil
	}, c.retryOpts)

	if err != nil {
		var serr *statusError
		if errors.As(err, &serr) {
			c.record(fmt.Sprintf("Unexpected %s response status %d", label, serr.code), serr.body)
		} else if ctx.Err() == nil {
			c.record("Error requesting "+label, err.Error())
		}
		c.logger.Warn("Remote call failed", "endpoint", label, "error", err)
		return nil, err
	}
	return body, nil
}

func (c *Client) record(prefix, payload string) {
	if err := c.diag.Record(prefix, payload); err != nil {
		c.logger.Error("Failed to write diagnostic log", "error", err)
	}
}

// field reads a scalar at path from an untyped JSON value as a string.
func field(obj any, path string) string {
	v, err := jsonpath.Get(path, obj)
	if err != nil {
		return ""
	}
	switch v := v.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

// Ensure Client implements TransactionFetcher interface.
var _ TransactionFetcher = (*Client)(nil)
