package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/http2"

	"github.com/gcnwokike/API-Commander/apicmd/config"
	"github.com/gcnwokike/API-Commander/apicmd/request"
)

var (
	// ErrCancelled reports a send aborted by the caller. Distinct from a
	// timeout so the two render differently.
	ErrCancelled = errors.New("request cancelled")
	// ErrTimeout reports a send that outlived its deadline.
	ErrTimeout = errors.New("request timed out")
)

// Sender executes prepared requests. The zero value is usable and applies
// the default timeout per send.
type Sender struct {
	// Client overrides the HTTP client, primarily for tests. When nil a
	// shared HTTP/2-capable client is used.
	Client *http.Client

	// Timeout bounds each send. Zero means the default.
	Timeout time.Duration
}

// defaultClient negotiates HTTP/2 over TLS and falls back to HTTP/1.1.
// Response decompression is ours: auto-gzip is disabled so Size reflects
// the wire and encodings beyond gzip decode uniformly.
var defaultClient = newClient()

func newClient() *http.Client {
	transport := &http.Transport{
		Proxy:              http.ProxyFromEnvironment,
		DisableCompression: true,
	}
	if err := http2.ConfigureTransport(transport); err != nil {
		// Leaves the transport HTTP/1.1-only, which is still functional.
		transport.ForceAttemptHTTP2 = false
	}
	return &http.Client{Transport: transport}
}

// Send transmits a prepared request and decodes the response. Non-2xx
// statuses are successful sends; only transport-level failures return an
// error. The context may carry caller cancellation; the configured timeout
// is layered on top.
func (s *Sender) Send(ctx context.Context, prepared *request.Prepared) (*Response, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = config.DefaultSendTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if len(prepared.Body) > 0 {
		body = bytes.NewReader(prepared.Body)
	}
	req, err := http.NewRequestWithContext(ctx, string(prepared.Method), prepared.URL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for _, h := range prepared.Headers {
		if strings.EqualFold(h.Name, "Host") {
			req.Host = h.Value
			continue
		}
		req.Header.Set(h.Name, h.Value)
	}

	client := s.Client
	if client == nil {
		client = defaultClient
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, classifySendError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifySendError(ctx, err)
	}
	duration := time.Since(start)

	decoded := raw
	if decompressed, wasCompressed := Decompress(raw, resp.Header.Get("Content-Encoding")); wasCompressed {
		if decompressed == nil {
			decoded = raw // keep the raw bytes when decoding fails
		} else {
			decoded = decompressed
		}
	}

	return &Response{
		Status:     resp.StatusCode,
		StatusText: strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "),
		Proto:      resp.Proto,
		Headers:    resp.Header,
		Cookies:    resp.Cookies(),
		Body:       decoded,
		Size:       int64(len(raw)),
		Duration:   duration,
	}, nil
}

// classifySendError maps context-driven failures onto the cancelled and
// timed-out sentinels; everything else passes through.
func classifySendError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return ErrCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	}
	// http.Client wraps the context error in a url.Error without always
	// preserving errors.Is, so consult the context directly too.
	switch ctx.Err() {
	case context.Canceled:
		return ErrCancelled
	case context.DeadlineExceeded:
		return ErrTimeout
	}
	return err
}
