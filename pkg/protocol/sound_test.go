package protocol

import "testing"

func TestParseSound(t *testing.T) {
	tests := []struct {
		raw      string
		wantOK   bool
		wantKind SoundKind
		wantText string
	}{
		{"HORN", true, SoundHorn, ""},
		{"  HORN\n", true, SoundHorn, ""},
		{"SAY:hello there", true, SoundSay, "hello there"},
		{"SAY:time: 12:30", true, SoundSay, "time: 12:30"},
		{"SAY:", true, SoundSay, ""},
		{"horn", false, SoundUnknown, "horn"},
		{"HORN please", false, SoundUnknown, "HORN please"},
		{"SING:la", false, SoundUnknown, "SING:la"},
		{"", false, SoundUnknown, ""},
	}

	for _, tt := range tests {
		cmd, ok := ParseSound(tt.raw)
		if ok != tt.wantOK {
			t.Errorf("%q: ok=%v, want %v", tt.raw, ok, tt.wantOK)
		}
		if cmd.Kind != tt.wantKind {
			t.Errorf("%q: kind=%v, want %v", tt.raw, cmd.Kind, tt.wantKind)
		}
		if cmd.Text != tt.wantText {
			t.Errorf("%q: text=%q, want %q", tt.raw, cmd.Text, tt.wantText)
		}
	}
}
