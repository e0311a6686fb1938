package protocol

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func packFloats(fs ...float32) []byte {
	buf := make([]byte, 4*len(fs))
	for i, f := range fs {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func TestDecodeMotionRejectsBadLengths(t *testing.T) {
	for n := 0; n <= 40; n++ {
		if n == 8 || n == 12 || n == 16 {
			continue
		}
		cmd, err := DecodeMotion(make([]byte, n))
		if err == nil {
			t.Fatalf("len %d: expected error, got command %v", n, cmd)
		}
		if !errors.Is(err, ErrBadLength) {
			t.Errorf("len %d: expected ErrBadLength, got %v", n, err)
		}
		var decodeErr *DecodeError
		if !errors.As(err, &decodeErr) || decodeErr.Length != n {
			t.Errorf("len %d: expected DecodeError with length, got %v", n, err)
		}
	}
}

func TestDecodeMotionFieldPresence(t *testing.T) {
	tests := []struct {
		name      string
		buf       []byte
		wantCount int
		wantYaw   bool
		wantPitch bool
	}{
		{"drive only", packFloats(0.5, -1.25), 2, false, false},
		{"with yaw", packFloats(0.5, -1.25, 12), 3, true, false},
		{"with yaw and pitch", packFloats(0.5, -1.25, 12, -7.5), 4, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := DecodeMotion(tt.buf)
			if err != nil {
				t.Fatalf("DecodeMotion failed: %v", err)
			}
			if cmd.FieldCount() != len(tt.buf)/4 || cmd.FieldCount() != tt.wantCount {
				t.Errorf("Expected %d fields, got %d", tt.wantCount, cmd.FieldCount())
			}
			if (cmd.CameraYaw != nil) != tt.wantYaw {
				t.Errorf("Yaw presence: got %v, want %v", cmd.CameraYaw != nil, tt.wantYaw)
			}
			if (cmd.CameraPitch != nil) != tt.wantPitch {
				t.Errorf("Pitch presence: got %v, want %v", cmd.CameraPitch != nil, tt.wantPitch)
			}
			if cmd.Linear != 0.5 || cmd.Angular != -1.25 {
				t.Errorf("Unexpected drive fields: %v", cmd)
			}
			if tt.wantYaw && *cmd.CameraYaw != 12 {
				t.Errorf("Yaw: got %v, want 12", *cmd.CameraYaw)
			}
			if tt.wantPitch && *cmd.CameraPitch != -7.5 {
				t.Errorf("Pitch: got %v, want -7.5", *cmd.CameraPitch)
			}
		})
	}
}

func TestEncodeMotionMatchesWireLayout(t *testing.T) {
	cmd := MotionCommand{Linear: 0.3, Angular: 0, CameraYaw: Float32(50)}

	buf := EncodeMotion(cmd)
	if len(buf) != MotionPacketSizeYaw {
		t.Fatalf("Expected 12 bytes, got %d", len(buf))
	}
	want := packFloats(0.3, 0, 50)
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("Byte %d: got %x, want %x", i, buf[i], want[i])
		}
	}

	// Pitch without yaw cannot be expressed on the wire
	if n := len(EncodeMotion(MotionCommand{CameraPitch: Float32(1)})); n != MotionPacketSize {
		t.Errorf("Expected pitch-only command to encode as 8 bytes, got %d", n)
	}
}

func TestMotionCommandString(t *testing.T) {
	cmd := MotionCommand{Linear: 1, Angular: 3.5, CameraYaw: Float32(10)}
	if got := cmd.String(); got != "linear=1.00 angular=3.50 yaw=10.00" {
		t.Errorf("Unexpected String(): %s", got)
	}
}
