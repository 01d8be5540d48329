package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/godilite/eloca-metrics/internal/apperr"
)

const (
	defaultTimeout  = 30 * time.Second
	maxBodyBytes    = 64 << 20
	tokenHeader     = "DeskManager"
	defaultAgent    = "Eloca-Dashboard/1.0"
	tokenQueryParam = "token"
)

var errNoLocation = errors.New("neither url nor file configured")

// Source describes where one report lives. A configured File takes
// precedence over URL.
type Source struct {
	Name  string
	URL   string
	Token string
	File  string
	Sheet string
}

// Fetcher retrieves raw report bytes over HTTP or from disk.
type Fetcher struct {
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	logger     *zap.Logger
}

type Option func(*Fetcher)

func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.httpClient = c
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  defaultAgent,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	// The caller's client is copied so a timeout never leaks into it.
	if f.timeout > 0 {
		c := *f.httpClient
		c.Timeout = f.timeout
		f.httpClient = &c
	}
	f.logger = f.logger.Named("fetcher")
	return f
}

// Fetch returns the raw document for src. Every failure is a
// *apperr.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, src Source) ([]byte, error) {
	start := time.Now()

	var data []byte
	var err error
	switch {
	case src.File != "":
		data, err = f.readFile(src)
	case src.URL != "":
		data, err = f.get(ctx, src)
	default:
		err = &apperr.FetchError{Source: src.Name, Err: errNoLocation}
	}
	if err != nil {
		return nil, err
	}

	f.logger.Info("source fetched",
		zap.String("source", src.Name),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)))

	return data, nil
}

func (f *Fetcher) readFile(src Source) ([]byte, error) {
	data, err := os.ReadFile(src.File)
	if err != nil {
		return nil, &apperr.FetchError{Source: src.Name, Err: err}
	}
	return data, nil
}

func (f *Fetcher) get(ctx context.Context, src Source) ([]byte, error) {
	endpoint, err := url.Parse(src.URL)
	if err != nil {
		return nil, &apperr.FetchError{Source: src.Name, Err: fmt.Errorf("parse url: %w", err)}
	}
	if src.Token != "" && endpoint.Query().Get(tokenQueryParam) == "" {
		q := endpoint.Query()
		q.Set(tokenQueryParam, src.Token)
		endpoint.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, &apperr.FetchError{Source: src.Name, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", f.userAgent)
	if src.Token != "" {
		req.Header.Set(tokenHeader, src.Token)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &apperr.FetchError{Source: src.Name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &apperr.FetchError{
			Source: src.Name,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%s", body),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &apperr.FetchError{Source: src.Name, Err: fmt.Errorf("read body: %w", err)}
	}
	return data, nil
}
