package upload

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "scorerelay"
)

// Transport stamps every outgoing request with the relay's User-Agent.
// It never replays a request: a failed POST surfaces as-is.
type Transport struct {
	Base      http.RoundTripper
	UserAgent string
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	r := req.Clone(req.Context())
	if r.Header.Get("User-Agent") == "" {
		ua := t.UserAgent
		if ua == "" {
			ua = defaultUserAgent
		}
		r.Header.Set("User-Agent", ua)
	}
	return t.Base.RoundTrip(r)
}

// HTTPOptions configures the client returned by NewHTTPClient.
type HTTPOptions struct {
	// Timeout bounds a whole request including reading the body. Zero selects
	// the default; a negative value disables the limit.
	Timeout   time.Duration
	UserAgent string
	ProxyURL  string
}

// NewHTTPClient builds the client used to reach the scoring API.
// Timeout policy lives here, not in the pipeline.
func NewHTTPClient(opts HTTPOptions) (*http.Client, error) {
	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 20 * time.Second,
	}

	if p := strings.TrimSpace(opts.ProxyURL); p != "" {
		u, err := url.Parse(p)
		if err != nil {
			return nil, err
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, errors.New("proxy url must include scheme and host")
		}
		base.Proxy = http.ProxyURL(u)
	}

	timeout := opts.Timeout
	switch {
	case timeout == 0:
		timeout = defaultTimeout
	case timeout < 0:
		timeout = 0
	}

	return &http.Client{
		Transport: &Transport{Base: base, UserAgent: strings.TrimSpace(opts.UserAgent)},
		Timeout:   timeout,
	}, nil
}
