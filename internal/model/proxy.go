// Package model defines shared types for the proxy.
package model

import (
	"context"
	"io"
	"net/http"
)

// ProxyRequest represents a client request to be forwarded upstream.
type ProxyRequest struct {
	Ctx      context.Context
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     io.Reader
}

// ProxyResponse is an upstream response whose body has been read in full.
type ProxyResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}
