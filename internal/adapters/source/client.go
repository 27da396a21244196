// Package source fetches player records from the diving-fish prober.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/maifilter/internal/domain/model"
	"github.com/okian/maifilter/pkg/logger"
	"github.com/okian/maifilter/pkg/metrics"
)

const (
	defaultBaseURL = "https://www.diving-fish.com/api/maimaidxprober"
	defaultTimeout = 10 * time.Second
	recordsPath    = "/dev/player/records"
	tokenHeader    = "Developer-Token"
	maxBodyBytes   = 8 << 20
)

// Error kinds reported to the fetch error metric.
const (
	kindNotFound  = "not_found"
	kindDisabled  = "disabled"
	kindTransport = "transport"
	kindStatus    = "status"
	kindDecode    = "decode"
)

// Account identifies a player. Username takes precedence over QQ.
type Account struct {
	QQ       int64
	Username string
}

// Key returns a stable cache key for the account.
func (a Account) Key() string {
	if a.Username != "" {
		return "user:" + a.Username
	}
	return "qq:" + strconv.FormatInt(a.QQ, 10)
}

// Empty reports whether the account names nobody.
func (a Account) Empty() bool {
	return a.Username == "" && a.QQ == 0
}

// Fetcher fetches the full record list of one player.
type Fetcher interface {
	Fetch(ctx context.Context, acc Account) (*model.PlayerInfo, error)
}

// Client is the prober HTTP client. It never retries.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	http    *http.Client
	logger  logger.Logger
}

var _ Fetcher = (*Client)(nil)

// NewClient creates a prober client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	if c.logger == nil {
		c.logger = logger.Named("source")
	}
	return c
}

type recordsRequest struct {
	QQ       int64  `json:"qq,omitempty"`
	Username string `json:"username,omitempty"`
}

// Fetch asks the prober for every record of acc.
func (c *Client) Fetch(ctx context.Context, acc Account) (*model.PlayerInfo, error) {
	if acc.Empty() {
		return nil, ErrNoAccount
	}
	start := time.Now()
	info, kind, err := c.fetch(ctx, acc)
	metrics.RecordFetch(time.Since(start), kind)
	if err != nil {
		c.logger.Warn(ctx, "prober fetch failed",
			logger.String("account", acc.Key()),
			logger.String("kind", kind),
			logger.Error(err),
		)
		return nil, err
	}
	c.logger.Debug(ctx, "prober fetch",
		logger.String("account", acc.Key()),
		logger.Int("records", len(info.Records)),
		logger.Duration("took", time.Since(start)),
	)
	return info, nil
}

func (c *Client) fetch(ctx context.Context, acc Account) (*model.PlayerInfo, string, error) {
	body := recordsRequest{QQ: acc.QQ, Username: acc.Username}
	if acc.Username != "" {
		body.QQ = 0
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, kindTransport, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+recordsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, kindTransport, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(tokenHeader, c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, kindTransport, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest:
		return nil, kindNotFound, ErrUserNotFound
	case http.StatusForbidden:
		return nil, kindDisabled, ErrQueryDisabled
	default:
		return nil, kindStatus, fmt.Errorf("%w: prober status %d", ErrUnavailable, resp.StatusCode)
	}

	var info model.PlayerInfo
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&info); err != nil {
		return nil, kindDecode, fmt.Errorf("%w: decode: %w", ErrUnavailable, err)
	}
	return &info, "", nil
}
