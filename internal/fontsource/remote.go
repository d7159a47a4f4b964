package fontsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rook-computer/emogen/internal/render"
)

// Remote fetches the font from a URL on every call, as a blob store would
// serve it. Nothing is cached between calls.
type Remote struct {
	url    string
	client *retryablehttp.Client
}

// NewRemote returns a Remote for url. Each attempt is bounded by timeout;
// failed attempts are retried twice.
func NewRemote(url string, timeout time.Duration) *Remote {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.HTTPClient.Timeout = timeout
	client.Logger = nil
	return &Remote{url: url, client: client}
}

func (r *Remote) Name() string {
	return "url:" + r.url
}

// Font downloads and parses the font. The request is cancelled with ctx.
func (r *Remote) Font(ctx context.Context) (*render.Font, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFontUnavailable, err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %w", ErrFontUnavailable, r.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch %s: status %d", ErrFontUnavailable, r.url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFontBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrFontUnavailable, r.url, err)
	}
	if len(data) > maxFontBytes {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrFontUnavailable, r.url, maxFontBytes)
	}
	return parseFont(path.Base(req.URL.Path), data)
}
