package api

import (
	"encoding/json"
	"errors"
	"syscall"

	"github.com/gofiber/contrib/websocket"

	customlog "github.com/open-teleop/rover/pkg/log"
	"github.com/open-teleop/rover/pkg/protocol"
)

// PacketSender delivers an encoded motion packet to the motion channel.
type PacketSender interface {
	Send(payload []byte) error
}

// TwistToMotion converts a Twist message into a motion command. Pitch is
// only carried when yaw is present, matching the packet layout.
func TwistToMotion(twist TwistMsg) protocol.MotionCommand {
	cmd := protocol.MotionCommand{
		Linear:  float32(twist.Linear.X),
		Angular: float32(twist.Angular.Z),
	}
	if twist.Camera != nil && twist.Camera.Yaw != nil {
		cmd.CameraYaw = protocol.Float32(float32(*twist.Camera.Yaw))
		if twist.Camera.Pitch != nil {
			cmd.CameraPitch = protocol.Float32(float32(*twist.Camera.Pitch))
		}
	}
	return cmd
}

// ControlWebSocketHandler relays Twist JSON messages from a browser to the
// motion channel as binary packets, so the motion supervisor stays the only
// writer to the actuators.
func ControlWebSocketHandler(conn *websocket.Conn, logger customlog.Logger, sender PacketSender) {
	logger.Infof("Control WebSocket connected: %s", conn.RemoteAddr())
	var (
		mt  int
		msg []byte
		err error
	)
	for {
		if mt, msg, err = conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Errorf("Control WS read error: %v", err)
			} else if err != websocket.ErrCloseSent && !errors.Is(err, syscall.EPIPE) && !errors.Is(err, syscall.ECONNRESET) {
				logger.Infof("Control WS connection closed: %v", err)
			} else {
				logger.Infof("Control WS connection closed normally.")
			}
			break
		}

		if mt != websocket.TextMessage {
			logger.Infof("Ignoring non-text Control WS message type: %d", mt)
			continue
		}

		var twist TwistMsg
		if err := json.Unmarshal(msg, &twist); err != nil {
			logger.Warnf("Failed to unmarshal Twist command from WS: %v. Message: %s", err, string(msg))
			continue
		}
		if twist.Camera != nil && twist.Camera.Yaw == nil && twist.Camera.Pitch != nil {
			logger.Warnf("Dropping camera pitch without yaw")
		}

		cmd := TwistToMotion(twist)
		logger.Debugf("Relaying WS command: %v", cmd)
		if err := sender.Send(protocol.EncodeMotion(cmd)); err != nil {
			logger.Errorf("Failed to relay motion packet: %v", err)
		}
	}
	logger.Infof("Control WebSocket disconnected: %s", conn.RemoteAddr())
}
