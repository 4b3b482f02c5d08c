package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"novo-proxy-go/internal/config"
)

// Version is the build version injected by fx.
type Version string

// HealthHandler serves /healthz and /proxy/status.
type HealthHandler struct {
	cfg     *config.Config
	version Version
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(cfg *config.Config, v Version) *HealthHandler {
	return &HealthHandler{cfg: cfg, version: v}
}

type statusResponse struct {
	Status              string `json:"status"`
	Version             string `json:"version"`
	UpstreamURL         string `json:"upstream_url"`
	Prefix              string `json:"prefix"`
	AccessTokenHeader   string `json:"access_token_header"`
	UpstreamTokenHeader string `json:"upstream_token_header"`
	MetricsPath         string `json:"metrics_path,omitempty"`
}

// Healthz is the liveness probe. It never contacts the upstream.
func (h *HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Status reports how the proxy is wired.
func (h *HealthHandler) Status(c echo.Context) error {
	res := statusResponse{
		Status:              "ok",
		Version:             string(h.version),
		UpstreamURL:         h.cfg.Upstream.BaseURL,
		Prefix:              h.cfg.Proxy.Prefix,
		AccessTokenHeader:   h.cfg.Proxy.AccessTokenHeader,
		UpstreamTokenHeader: h.cfg.Proxy.UpstreamTokenHeader,
	}
	if h.cfg.Metrics.Enabled {
		res.MetricsPath = h.cfg.Metrics.Path
	}
	return c.JSON(http.StatusOK, res)
}
