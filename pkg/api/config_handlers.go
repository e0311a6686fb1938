package api

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/open-teleop/rover/pkg/config"
	customlog "github.com/open-teleop/rover/pkg/log"
)

// ConfigHandler serves the effective configuration.
type ConfigHandler struct {
	cfg    *config.Config
	logger customlog.Logger
}

// NewConfigHandler creates a new handler for configuration endpoints.
func NewConfigHandler(cfg *config.Config, logger customlog.Logger) *ConfigHandler {
	if cfg == nil {
		panic("Config cannot be nil in NewConfigHandler")
	}
	return &ConfigHandler{cfg: cfg, logger: logger}
}

// RegisterConfigRoutes registers the configuration API endpoints.
func RegisterConfigRoutes(router fiber.Router, cfg *config.Config, logger customlog.Logger) {
	h := NewConfigHandler(cfg, logger)
	router.Get("/config", h.handleGetConfig)
	logger.Infof("Registered configuration API endpoint under /api/v1/config")
}

// handleGetConfig returns the running configuration (defaults and
// environment overrides applied) as YAML.
func (h *ConfigHandler) handleGetConfig(c *fiber.Ctx) error {
	yamlData, err := h.cfg.YAML()
	if err != nil {
		h.logger.Errorf("Failed to render config YAML: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("Failed to retrieve configuration: %v", err),
		})
	}

	c.Set(fiber.HeaderContentType, "application/x-yaml")
	return c.Send(yamlData)
}
