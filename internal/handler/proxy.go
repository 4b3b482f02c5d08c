package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"novo-proxy-go/internal/model"
	"novo-proxy-go/internal/service"
)

// ProxyHandler forwards requests under the proxy prefix to the upstream API.
type ProxyHandler struct {
	service *service.ProxyService
	logger  *slog.Logger
}

// NewProxyHandler creates a ProxyHandler.
func NewProxyHandler(svc *service.ProxyService, logger *slog.Logger) *ProxyHandler {
	return &ProxyHandler{
		service: svc,
		logger:  logger.With("component", "proxy_handler"),
	}
}

// Handle proxies the request upstream and relays status, body and Content-Type.
func (h *ProxyHandler) Handle(c echo.Context) error {
	req := c.Request()

	pr := &model.ProxyRequest{
		Ctx:      req.Context(),
		Method:   req.Method,
		Path:     req.URL.EscapedPath(),
		RawQuery: req.URL.RawQuery,
		Header:   req.Header,
		Body:     req.Body,
	}

	resp, err := h.service.Forward(pr)
	if err != nil {
		return h.mapError(c, err)
	}

	header := c.Response().Header()
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		header.Set("Content-Type", ct)
	} else {
		// Keep net/http from sniffing a type the upstream never sent.
		header["Content-Type"] = nil
	}

	c.Response().WriteHeader(resp.StatusCode)
	if _, err := c.Response().Write(resp.Body); err != nil {
		h.logger.Error("writing response body",
			"err", err,
			"path", req.URL.Path,
		)
	}

	return nil
}

// mapError turns forwarding failures into a generic error response. The
// forwarder produces no structured body of its own; Echo's error handler
// renders the status.
func (h *ProxyHandler) mapError(c echo.Context, err error) error {
	if errors.Is(err, service.ErrOutsidePrefix) {
		return echo.ErrNotFound
	}

	if errors.Is(err, context.Canceled) {
		h.logger.Debug("client went away before upstream answered",
			"path", c.Request().URL.Path,
		)
	} else {
		h.logger.Error("proxy error",
			"err", err,
			"path", c.Request().URL.Path,
		)
	}

	return echo.NewHTTPError(http.StatusBadGateway).SetInternal(err)
}
