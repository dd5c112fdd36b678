package midi

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
)

// Event is a decoded incoming MIDI message. It is one of ProgramChange,
// ControlChange or Unhandled.
type Event interface {
	String() string
	isEvent()
}

// ProgramChange is a received program change.
type ProgramChange struct {
	Channel uint8
	Program uint8
}

// ControlChange is a received control change.
type ControlChange struct {
	Channel    uint8
	Controller uint8
	Value      uint8
}

// Unhandled carries any other message (notes, clock, sysex...).
type Unhandled struct {
	Raw []byte
}

func (ProgramChange) isEvent() {}
func (ControlChange) isEvent() {}
func (Unhandled) isEvent()     {}

func (e ProgramChange) String() string {
	return fmt.Sprintf("program_change channel=%d program=%d", e.Channel, e.Program)
}

func (e ControlChange) String() string {
	return fmt.Sprintf("control_change channel=%d control=%d value=%d", e.Channel, e.Controller, e.Value)
}

func (e Unhandled) String() string {
	return midi.Message(e.Raw).String()
}

// Decode turns a raw message into an Event.
func Decode(msg midi.Message) Event {
	var channel, a, b uint8

	switch {
	case msg.GetProgramChange(&channel, &a):
		return ProgramChange{Channel: channel, Program: a}
	case msg.GetControlChange(&channel, &a, &b):
		return ControlChange{Channel: channel, Controller: a, Value: b}
	default:
		raw := make([]byte, len(msg))
		copy(raw, msg)
		return Unhandled{Raw: raw}
	}
}
