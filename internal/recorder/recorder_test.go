package recorder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PixPMusic/ampswitcher/internal/midi"
	"github.com/PixPMusic/ampswitcher/internal/profile"
	"github.com/PixPMusic/ampswitcher/internal/recorder"
)

func TestSynthesizeEndToEnd(t *testing.T) {
	r := recorder.New()
	r.Record(midi.ProgramChange{Channel: 3, Program: 1})
	r.Record(midi.ProgramChange{Channel: 3, Program: 5})
	r.Record(midi.ControlChange{Channel: 3, Controller: 2, Value: 100})

	p := r.Synthesize()

	assert.Equal(t, 0, p.Channel)
	assert.Equal(t, recorder.ProfileName, p.Name)
	require.Len(t, p.Buttons, 3)
	assert.Equal(t, []profile.ButtonSpec{
		{Order: 0, Name: "button 1", ProgramChange: profile.Int(1)},
		{Order: 1, Name: "button 2", ProgramChange: profile.Int(5)},
		{Order: 2, Name: "button 3", CCNumber: profile.Int(2), CCValue: profile.Int(100)},
	}, p.Buttons)
	require.NoError(t, p.Validate())
}

func TestSynthesizeSkipsUnhandledWithoutConsumingOrder(t *testing.T) {
	r := recorder.New()
	r.Record(midi.Unhandled{Raw: []byte{0x90, 60, 100}})
	r.Record(midi.ProgramChange{Program: 7})
	r.Record(midi.Unhandled{Raw: []byte{0xF8}})
	r.Record(midi.ControlChange{Controller: 64, Value: 0})

	p := r.Synthesize()

	require.Len(t, p.Buttons, 2)
	assert.Equal(t, 0, p.Buttons[0].Order)
	assert.Equal(t, "button 1", p.Buttons[0].Name)
	assert.Equal(t, 1, p.Buttons[1].Order)
	assert.Equal(t, "button 2", p.Buttons[1].Name)
	assert.Equal(t, 4, r.Len())
}

func TestSynthesizeEmpty(t *testing.T) {
	p := recorder.New().Synthesize()
	assert.NotNil(t, p.Buttons)
	assert.Empty(t, p.Buttons)
}

func TestRecordKeepsDuplicates(t *testing.T) {
	r := recorder.New()
	r.Record(midi.ProgramChange{Program: 1})
	r.Record(midi.ProgramChange{Program: 1})

	assert.Len(t, r.Synthesize().Buttons, 2)
}

func TestResetStartsNewTake(t *testing.T) {
	r := recorder.New()
	first := r.TakeID()
	r.Record(midi.ProgramChange{Program: 1})

	r.Reset()

	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Events())
	assert.NotEqual(t, first, r.TakeID())
}

func TestEventsReturnsCopy(t *testing.T) {
	r := recorder.New()
	r.Record(midi.ProgramChange{Program: 1})

	evs := r.Events()
	evs[0] = midi.ProgramChange{Program: 99}

	assert.Equal(t, midi.ProgramChange{Program: 1}, r.Events()[0])
}
