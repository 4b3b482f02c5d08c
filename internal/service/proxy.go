// Package service implements the core proxy forwarding logic.
package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"novo-proxy-go/internal/client"
	"novo-proxy-go/internal/config"
	"novo-proxy-go/internal/model"
)

// ErrOutsidePrefix is returned when a request path does not start with the proxy prefix.
var ErrOutsidePrefix = errors.New("path is outside the proxy prefix")

// bodylessMethods never carry a body upstream, whatever the client sent.
var bodylessMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

const userAgent = "novo-proxy-go/1.0"

// ProxyService rewrites local requests onto the upstream origin.
type ProxyService struct {
	client *client.UpstreamClient
	logger *slog.Logger

	origin      string
	prefix      string
	tokenHeader string
	upstreamKey string
}

// NewProxyService creates a ProxyService.
func NewProxyService(c *client.UpstreamClient, cfg *config.Config, logger *slog.Logger) (*ProxyService, error) {
	u, err := url.Parse(cfg.Upstream.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse upstream base_url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("upstream base_url %q is not absolute", cfg.Upstream.BaseURL)
	}

	return &ProxyService{
		client:      c,
		logger:      logger.With("component", "proxy_service"),
		origin:      strings.TrimRight(cfg.Upstream.BaseURL, "/"),
		prefix:      cfg.Proxy.Prefix,
		tokenHeader: cfg.Proxy.AccessTokenHeader,
		upstreamKey: cfg.Proxy.UpstreamTokenHeader,
	}, nil
}

// Forward sends a ProxyRequest to the upstream and returns its status, body
// and Content-Type. Non-2xx statuses are not errors; only transport failures are.
func (s *ProxyService) Forward(pr *model.ProxyRequest) (*model.ProxyResponse, error) {
	rest, ok := s.StripPrefix(pr.Path)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrOutsidePrefix, pr.Path)
	}

	var body io.Reader
	if !bodylessMethods[pr.Method] && pr.Body != nil {
		data, err := io.ReadAll(pr.Body)
		if err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	target := s.buildUpstreamURL(rest, pr.RawQuery)
	header := s.filterRequestHeaders(pr.Header)

	s.logger.Debug("forwarding request",
		"method", pr.Method,
		"path", pr.Path,
		"upstream_path", rest,
	)

	resp, err := s.client.Do(pr.Ctx, pr.Method, target, header, body)
	if err != nil {
		return nil, fmt.Errorf("forward to upstream: %w", err)
	}

	resp.Header = filterResponseHeaders(resp.Header)
	return resp, nil
}

// StripPrefix removes the proxy prefix from the start of path, once. The
// remainder must be empty or begin with "/" so that "/api/novox" is not
// treated as part of "/api/novo".
func (s *ProxyService) StripPrefix(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, s.prefix)
	if !ok || (rest != "" && rest[0] != '/') {
		return "", false
	}
	return rest, true
}

// buildUpstreamURL appends the rewritten path and the untouched raw query to the origin.
func (s *ProxyService) buildUpstreamURL(rest, rawQuery string) string {
	target := s.origin + rest
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	return target
}

// filterRequestHeaders keeps Content-Type and the access token, renamed to
// the upstream's header name. Everything else is dropped.
func (s *ProxyService) filterRequestHeaders(src http.Header) http.Header {
	dst := make(http.Header)
	if ct := src.Get("Content-Type"); ct != "" {
		dst.Set("Content-Type", ct)
	}
	if token := src.Get(s.tokenHeader); token != "" {
		dst.Set(s.upstreamKey, token)
	}
	dst.Set("User-Agent", userAgent)
	return dst
}

// filterResponseHeaders keeps only the upstream Content-Type.
func filterResponseHeaders(src http.Header) http.Header {
	dst := make(http.Header)
	if ct := src.Get("Content-Type"); ct != "" {
		dst.Set("Content-Type", ct)
	}
	return dst
}
