// Package sound receives text sound commands and forwards them to the
// audio facade.
package sound

import (
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/open-teleop/rover/pkg/hardware"
	customlog "github.com/open-teleop/rover/pkg/log"
	"github.com/open-teleop/rover/pkg/protocol"
	"github.com/open-teleop/rover/pkg/shutdown"
	"github.com/open-teleop/rover/pkg/transport"
)

// Stats counts handled sound datagrams.
type Stats struct {
	Spoken  uint64 `json:"spoken"`
	Horns   uint64 `json:"horns"`
	Ignored uint64 `json:"ignored"`
}

// Listener dispatches SAY:<text> and HORN commands.
type Listener struct {
	source       transport.PacketSource
	audio        hardware.Audio
	stop         *shutdown.Coordinator
	pollInterval time.Duration
	logger       customlog.Logger

	spoken  atomic.Uint64
	horns   atomic.Uint64
	ignored atomic.Uint64
}

// NewListener creates a sound listener.
func NewListener(
	source transport.PacketSource,
	audio hardware.Audio,
	pollInterval time.Duration,
	stop *shutdown.Coordinator,
	logger customlog.Logger,
) *Listener {
	return &Listener{
		source:       source,
		audio:        audio,
		stop:         stop,
		pollInterval: pollInterval,
		logger:       logger.WithField("component", "sound"),
	}
}

// Run receives sound datagrams until stop is requested.
func (l *Listener) Run() {
	l.logger.Infof("Sound listener started")
	buf := make([]byte, protocol.MaxPacketSize)

	for !l.stop.IsStopRequested() {
		n, addr, err := l.source.Receive(buf, l.pollInterval)
		if l.stop.IsStopRequested() {
			break
		}

		switch {
		case err == nil:
			l.logger.Debugf("Sound datagram from %v (%d bytes)", addr, n)
			l.HandleDatagram(buf[:n])
		case errors.Is(err, transport.ErrTimeout):
		case errors.Is(err, transport.ErrClosed):
			l.logger.Errorf("Sound socket closed, requesting stop")
			l.stop.RequestStop("sound socket closed")
		default:
			l.logger.Errorf("Error receiving sound datagram: %v", err)
			l.stop.Wait(l.pollInterval)
		}
	}

	l.logger.Infof("Sound listener stopped")
}

// HandleDatagram dispatches every command line in a datagram.
func (l *Listener) HandleDatagram(data []byte) {
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		l.dispatch(line)
	}
}

func (l *Listener) dispatch(line string) {
	cmd, ok := protocol.ParseSound(line)
	if !ok {
		l.ignored.Add(1)
		l.logger.Infof("Ignoring unknown sound command: %q", cmd.Text)
		return
	}

	switch cmd.Kind {
	case protocol.SoundSay:
		l.spoken.Add(1)
		l.audio.Speak(cmd.Text)
	case protocol.SoundHorn:
		l.horns.Add(1)
		l.audio.PlayHorn()
	}
}

// Stats returns the command counters.
func (l *Listener) Stats() Stats {
	return Stats{
		Spoken:  l.spoken.Load(),
		Horns:   l.horns.Load(),
		Ignored: l.ignored.Load(),
	}
}
