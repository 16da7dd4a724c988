// Package imagecheck validates that a URL serves real image content before it
// is persisted on a product record.
package imagecheck

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultTimeout = 5 * time.Second
	userAgent      = "wishcdp-bot/1.0"
)

// Validator performs HEAD checks against candidate image URLs. A zero value
// is not usable; construct with NewValidator.
type Validator struct {
	client  *http.Client
	timeout time.Duration
	logger  zerolog.Logger
}

// Options configures a Validator.
type Options struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     zerolog.Logger
}

// NewValidator builds a Validator with a bounded request timeout.
func NewValidator(opts Options) *Validator {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Validator{client: client, timeout: timeout, logger: opts.Logger}
}

// IsImage reports whether rawURL is syntactically a http/https URL whose HEAD
// response is 200 with an image content type. Timeouts and transport errors
// count as invalid; the caller falls through to its no-image branch.
func (v *Validator) IsImage(ctx context.Context, rawURL string) bool {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, parsed.String(), nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Debug().Err(err).Str("url", rawURL).Msg("imagecheck: head request failed")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}
	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	return strings.HasPrefix(contentType, "image/")
}
