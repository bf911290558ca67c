// Package buildclient is the HTTP client to the remote build service:
// submit/status/await with endpoint round-robining, admission-control
// handling, authenticated requests, and a bounded status-code retry
// set. The retry engine is hashicorp/go-retryablehttp, generalized
// from the teacher's hand-rolled backoff loops in pkg/pinecone/client.go
// and pkg/embedding/openai to the spec's explicit retriable status set.
package buildclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/lattice-search/vecbuild/pkg/secret"
)

// retriableStatusCodes is the bounded set from spec.md §4.5. 507 is
// deliberately absent: it is handled one layer up, by Submit's
// endpoint-advance logic, never retried here.
var retriableStatusCodes = map[int]bool{
	408: true, 429: true, 500: true, 502: true, 503: true, 504: true, 509: true,
}

// Config configures a Client.
type Config struct {
	// Endpoints is the round-robin pool, tried in list order for each
	// Submit call.
	Endpoints []string

	// HTTPTimeout bounds each HTTP attempt separately (every retry
	// gets a fresh budget), distinct from Await's wall-clock timeout.
	HTTPTimeout time.Duration

	// MaxAttempts bounds the request-level retry loop (1 = no
	// retries).
	MaxAttempts int

	// RetryBaseDelay is the base delay between retry attempts: the
	// n-th retry waits n * RetryBaseDelay.
	RetryBaseDelay time.Duration

	// Credentials, if non-nil, supplies the Basic-auth pair checked
	// before every request. A nil store means no Authorization header
	// is ever sent.
	Credentials *secret.Store

	Logger *slog.Logger
}

// Client talks to one of Config.Endpoints at a time per job, tracking
// which endpoint accepted each job in an in-process registry.
type Client struct {
	cfg      Config
	http     *retryablehttp.Client
	registry *jobRegistry
	logger   *slog.Logger
}

// New constructs a Client. Endpoints must be non-empty.
func New(cfg Config) (*Client, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, errors.New("buildclient: at least one endpoint is required")
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 4
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = 500 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rc := retryablehttp.NewClient()
	rc.Logger = nil // the teacher's clients log through their own logger, not the library's
	rc.RetryMax = cfg.MaxAttempts - 1
	rc.RetryWaitMin = cfg.RetryBaseDelay
	rc.RetryWaitMax = cfg.RetryBaseDelay
	rc.Backoff = retryablehttp.LinearJitterBackoff
	rc.CheckRetry = checkRetry
	rc.HTTPClient = &http.Client{
		Timeout: cfg.HTTPTimeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
		},
	}

	return &Client{
		cfg:      cfg,
		http:     rc,
		registry: newJobRegistry(),
		logger:   logger,
	}, nil
}

// checkRetry implements spec.md §4.5's retry classification: the
// status codes in retriableStatusCodes, plus every transport-level
// error (I/O interruption, unknown host, connect refused, connection
// closed, no route to host, TLS handshake failure all surface as
// net.Error/url.Error here) except a certificate signed by an unknown
// authority. Status 507 and all other 4xx/5xx are terminal.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			// A certificate from an unknown authority will never
			// succeed on retry; everything else at the transport
			// level (connection refused/reset, DNS failure, TLS
			// handshake failure, timeout) is the transient-network-
			// error set named in spec.md §4.5.
			var certErr x509.UnknownAuthorityError
			if errors.As(urlErr.Err, &certErr) {
				return false, nil
			}
			return true, nil
		}
		return true, nil
	}

	if resp == nil {
		return false, nil
	}
	if resp.StatusCode == http.StatusOK {
		return false, nil
	}
	return retriableStatusCodes[resp.StatusCode], nil
}

// authorize sets the Authorization header on req from the current
// credential store contents, and leaves req untouched when no
// credentials are stored. It reads the store on every call so a
// credential rotation is visible on the very next request.
func (c *Client) authorize(req *http.Request) {
	if c.cfg.Credentials == nil {
		return
	}
	creds, ok := c.cfg.Credentials.Get()
	if !ok {
		return
	}

	raw := append([]byte(creds.Username+":"), creds.Password...)
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString(raw))
}
