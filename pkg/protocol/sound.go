package protocol

import "strings"

// Sound command keywords.
const (
	SayPrefix   = "SAY:"
	HornCommand = "HORN"
)

// SoundKind identifies a parsed sound command.
type SoundKind int

const (
	SoundUnknown SoundKind = iota
	SoundSay
	SoundHorn
)

func (k SoundKind) String() string {
	switch k {
	case SoundSay:
		return "SAY"
	case SoundHorn:
		return "HORN"
	default:
		return "UNKNOWN"
	}
}

// SoundCommand is one parsed sound datagram.
type SoundCommand struct {
	Kind SoundKind
	Text string
}

// ParseSound parses a sound datagram after trimming surrounding whitespace.
// The second return value is false for anything that is not SAY:<text> or HORN.
func ParseSound(raw string) (SoundCommand, bool) {
	msg := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(msg, SayPrefix):
		return SoundCommand{Kind: SoundSay, Text: msg[len(SayPrefix):]}, true
	case msg == HornCommand:
		return SoundCommand{Kind: SoundHorn}, true
	default:
		return SoundCommand{Kind: SoundUnknown, Text: msg}, false
	}
}
