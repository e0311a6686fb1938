package api

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	customlog "github.com/open-teleop/rover/pkg/log"
	"github.com/open-teleop/rover/pkg/protocol"
)

// CommandHandler accepts one-shot Twist commands over HTTP and relays them
// to the motion channel like the control websocket does.
type CommandHandler struct {
	sender PacketSender
	logger customlog.Logger
}

// RegisterCommandRoutes registers POST /command on router.
func RegisterCommandRoutes(router fiber.Router, sender PacketSender, logger customlog.Logger) {
	h := &CommandHandler{sender: sender, logger: logger}
	router.Post("/command", h.handlePostCommand)
}

func (h *CommandHandler) handlePostCommand(c *fiber.Ctx) error {
	var twist TwistMsg
	if err := c.BodyParser(&twist); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	cmd := TwistToMotion(twist)
	packet := protocol.EncodeMotion(cmd)
	if err := h.sender.Send(packet); err != nil {
		h.logger.Errorf("Failed to relay motion packet: %v", err)
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to relay command to motion channel.",
		})
	}

	return c.JSON(fiber.Map{
		"status": "accepted",
		"bytes":  len(packet),
	})
}
