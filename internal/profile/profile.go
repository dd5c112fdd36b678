package profile

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrProfileNotFound is returned together with a default profile when the file is missing.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrProfileInvalid is returned when a profile file is not a valid profile document.
	ErrProfileInvalid = errors.New("profile invalid")
)

// MaxChannel is the highest channel a profile may carry; 16 means "not set".
const MaxChannel = 16

//go:embed sample.json
var sampleData []byte

// ButtonSpec describes one on-screen button.
type ButtonSpec struct {
	Order         int    `json:"order"`
	Name          string `json:"name"`
	Color         string `json:"color,omitempty"`
	ProgramChange *int   `json:"program_change,omitempty"`
	CCNumber      *int   `json:"cc_number,omitempty"`
	CCValue       *int   `json:"cc_value,omitempty"`
}

// Inert reports whether pressing the button sends nothing.
func (b ButtonSpec) Inert() bool {
	return b.ProgramChange == nil && b.CCNumber == nil
}

// Profile is a named button layout bound to a MIDI channel.
type Profile struct {
	Name    string       `json:"name"`
	Channel int          `json:"channel"`
	Buttons []ButtonSpec `json:"buttons"`
}

// New returns the empty profile used when a file does not exist.
func New() *Profile {
	return &Profile{
		Name:    "New Profile",
		Channel: 0,
		Buttons: []ButtonSpec{},
	}
}

// Template returns the starter document written by "new profile".
func Template() *Profile {
	return &Profile{
		Name:    "Template",
		Channel: 0,
		Buttons: []ButtonSpec{
			{Order: 0, Name: "clean", Color: "green", ProgramChange: Int(1)},
		},
	}
}

// Sample returns the bundled sample profile.
func Sample() *Profile {
	p, err := Parse(sampleData)
	if err != nil {
		// sample.json is compiled in; a parse failure is a build defect
		panic(fmt.Sprintf("bundled sample profile: %v", err))
	}
	return p
}

// Int returns a pointer to v, for the optional button fields.
func Int(v int) *int {
	return &v
}

// Parse decodes and validates a profile document.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileInvalid, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Buttons == nil {
		p.Buttons = []ButtonSpec{}
	}
	return &p, nil
}

// Marshal encodes the profile as indented JSON.
func (p *Profile) Marshal() ([]byte, error) {
	return json.MarshalIndent(p, "", "    ")
}

// Validate checks channel and MIDI data ranges.
func (p *Profile) Validate() error {
	if p.Channel < 0 || p.Channel > MaxChannel {
		return fmt.Errorf("%w: channel %d outside 0-%d", ErrProfileInvalid, p.Channel, MaxChannel)
	}
	for i, b := range p.Buttons {
		fields := []struct {
			name string
			v    *int
		}{
			{"program_change", b.ProgramChange},
			{"cc_number", b.CCNumber},
			{"cc_value", b.CCValue},
		}
		for _, f := range fields {
			if f.v != nil && (*f.v < 0 || *f.v > 127) {
				return fmt.Errorf("%w: button %d (%q) %s %d outside 0-127", ErrProfileInvalid, i, b.Name, f.name, *f.v)
			}
		}
	}
	return nil
}

// SortedButtons returns the buttons ordered by Order; equal orders keep their
// position in the document.
func (p *Profile) SortedButtons() []ButtonSpec {
	buttons := make([]ButtonSpec, len(p.Buttons))
	copy(buttons, p.Buttons)
	sort.SliceStable(buttons, func(i, j int) bool {
		return buttons[i].Order < buttons[j].Order
	})
	return buttons
}

// Clone returns a deep copy.
func (p *Profile) Clone() *Profile {
	c := &Profile{Name: p.Name, Channel: p.Channel, Buttons: make([]ButtonSpec, len(p.Buttons))}
	for i, b := range p.Buttons {
		c.Buttons[i] = b
		c.Buttons[i].ProgramChange = cloneInt(b.ProgramChange)
		c.Buttons[i].CCNumber = cloneInt(b.CCNumber)
		c.Buttons[i].CCValue = cloneInt(b.CCValue)
	}
	return c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	return Int(*v)
}
