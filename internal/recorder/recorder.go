package recorder

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/PixPMusic/ampswitcher/internal/midi"
	"github.com/PixPMusic/ampswitcher/internal/profile"
)

// ProfileName is the name given to synthesized profiles.
const ProfileName = "Recorded Profile"

// Recorder accumulates incoming MIDI events for one take. It is not safe for
// concurrent use; events are handed to it from the main loop.
type Recorder struct {
	take   uuid.UUID
	events []midi.Event
}

// New returns an empty recorder with a fresh take ID.
func New() *Recorder {
	return &Recorder{take: uuid.New()}
}

// TakeID identifies the current take. It changes on Reset.
func (r *Recorder) TakeID() string {
	return r.take.String()
}

// Record appends one event.
func (r *Recorder) Record(ev midi.Event) {
	r.events = append(r.events, ev)
	slog.Debug("recorder: event", "take", r.take, "event", ev.String())
}

// Reset clears the buffer and starts a new take.
func (r *Recorder) Reset() {
	r.events = nil
	r.take = uuid.New()
}

// Len returns the number of buffered events.
func (r *Recorder) Len() int {
	return len(r.events)
}

// Events returns a copy of the buffered events in arrival order.
func (r *Recorder) Events() []midi.Event {
	out := make([]midi.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Synthesize builds a profile with one button per program or control change
// in the buffer. Other events are skipped and do not take an order slot.
func (r *Recorder) Synthesize() *profile.Profile {
	p := &profile.Profile{
		Name:    ProfileName,
		Channel: 0,
		Buttons: []profile.ButtonSpec{},
	}

	for _, ev := range r.events {
		order := len(p.Buttons)
		button := profile.ButtonSpec{
			Order: order,
			Name:  fmt.Sprintf("button %d", order+1),
		}

		switch e := ev.(type) {
		case midi.ProgramChange:
			button.ProgramChange = profile.Int(int(e.Program))
		case midi.ControlChange:
			button.CCNumber = profile.Int(int(e.Controller))
			button.CCValue = profile.Int(int(e.Value))
		default:
			continue
		}
		p.Buttons = append(p.Buttons, button)
	}

	slog.Info("recorder: synthesized profile", "take", r.take, "events", len(r.events), "buttons", len(p.Buttons))
	return p
}
