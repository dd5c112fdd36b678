package midi_test

import (
	"testing"

	"github.com/PixPMusic/ampswitcher/internal/midi"
	"github.com/PixPMusic/ampswitcher/internal/midi/miditest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, outs, ins []string) (*midi.Session, *miditest.Driver) {
	t.Helper()
	drv := miditest.New(outs, ins)
	s := midi.NewSession(drv)
	t.Cleanup(s.Close)
	return s, drv
}

func TestListOutputs(t *testing.T) {
	s, drv := newSession(t, []string{"USB MIDI CABLE", "IAC Bus 1"}, nil)
	assert.Equal(t, []string{"USB MIDI CABLE", "IAC Bus 1"}, s.ListOutputs())

	drv.Unplug("IAC Bus 1")
	assert.Equal(t, []string{"USB MIDI CABLE"}, s.ListOutputs(), "enumeration is not cached")
}

func TestOpenOutputSwapsHandles(t *testing.T) {
	s, drv := newSession(t, []string{"A", "B"}, nil)
	a, b := drv.Out("A"), drv.Out("B")

	require.NoError(t, s.OpenOutput("A"))
	require.NoError(t, s.OpenOutput("B"))

	assert.Equal(t, 1, a.Opens())
	assert.Equal(t, 1, a.Closes())
	assert.Equal(t, 1, b.Opens())
	assert.Equal(t, 0, b.Closes())
	assert.Equal(t, "B", s.Output())

	require.NoError(t, s.SendProgramChange(7))
	assert.Empty(t, a.Sent())
	assert.Equal(t, [][]byte{{0xC0, 7}}, b.Sent())
}

func TestOpenOutputSameNameKeepsHandle(t *testing.T) {
	s, drv := newSession(t, []string{"A"}, nil)

	require.NoError(t, s.OpenOutput("A"))
	require.NoError(t, s.OpenOutput("A"))

	assert.Equal(t, 1, drv.Out("A").Opens())
	assert.Equal(t, 0, drv.Out("A").Closes())
}

func TestOpenOutputSameNameAfterUnplug(t *testing.T) {
	s, drv := newSession(t, []string{"A"}, nil)
	a := drv.Out("A")
	require.NoError(t, s.OpenOutput("A"))

	drv.Unplug("A")
	err := s.OpenOutput("A")
	require.ErrorIs(t, err, midi.ErrPortUnavailable)

	assert.False(t, s.HasOutput())
	assert.Equal(t, "", s.Output())
	assert.Equal(t, 1, a.Closes())
	assert.ErrorIs(t, s.SendProgramChange(1), midi.ErrNoOutputConfigured)
}

func TestOpenOutputUnavailableClearsOutput(t *testing.T) {
	s, drv := newSession(t, []string{"A"}, nil)
	require.NoError(t, s.OpenOutput("A"))

	err := s.OpenOutput("gone")
	require.ErrorIs(t, err, midi.ErrPortUnavailable)

	assert.False(t, s.HasOutput())
	assert.Equal(t, "", s.Output())
	assert.Equal(t, 1, drv.Out("A").Closes())
	assert.ErrorIs(t, s.SendProgramChange(1), midi.ErrNoOutputConfigured)
}

func TestSendWithoutOutput(t *testing.T) {
	s, drv := newSession(t, []string{"A"}, nil)

	assert.ErrorIs(t, s.SendProgramChange(1), midi.ErrNoOutputConfigured)
	assert.ErrorIs(t, s.SendControlChange(1, 2), midi.ErrNoOutputConfigured)
	assert.Empty(t, drv.Out("A").Sent())
}

func TestSendUsesSessionChannel(t *testing.T) {
	s, drv := newSession(t, []string{"A"}, nil)
	require.NoError(t, s.OpenOutput("A"))

	s.SetChannel(3)
	require.NoError(t, s.SendProgramChange(10))
	require.NoError(t, s.SendControlChange(2, 100))

	s.SetChannel(16)
	require.NoError(t, s.SendProgramChange(11))

	assert.Equal(t, [][]byte{
		{0xC3, 10},
		{0xB3, 2, 100},
		{0xC0, 11},
	}, drv.Out("A").Sent())
	assert.Equal(t, 16, s.Channel())
}

func TestSendRejectsOutOfRangeValues(t *testing.T) {
	s, drv := newSession(t, []string{"A"}, nil)
	require.NoError(t, s.OpenOutput("A"))

	assert.ErrorIs(t, s.SendProgramChange(128), midi.ErrValueRange)
	assert.ErrorIs(t, s.SendControlChange(-1, 0), midi.ErrValueRange)
	assert.ErrorIs(t, s.SendControlChange(1, 200), midi.ErrValueRange)
	assert.Empty(t, drv.Out("A").Sent())
}

func TestCloseOutputIdempotent(t *testing.T) {
	s, drv := newSession(t, []string{"A"}, nil)
	require.NoError(t, s.OpenOutput("A"))

	s.CloseOutput()
	s.CloseOutput()

	assert.Equal(t, 1, drv.Out("A").Closes())
	assert.False(t, s.HasOutput())
}

func TestWireChannel(t *testing.T) {
	tests := []struct {
		in   int
		want uint8
	}{
		{0, 0},
		{9, 9},
		{15, 15},
		{16, 0},
		{-1, 0},
		{127, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, midi.WireChannel(tt.in), "channel %d", tt.in)
	}
}

func TestInputDeliversDecodedEvents(t *testing.T) {
	s, drv := newSession(t, nil, []string{"Pedal In"})

	name, err := s.OpenInput()
	require.NoError(t, err)
	assert.Equal(t, "Pedal In", name)
	assert.True(t, s.Listening())

	in := drv.In("Pedal In")
	require.True(t, in.Emit(0xC0, 5))
	require.True(t, in.Emit(0xB1, 2, 100))
	require.True(t, in.Emit(0x90, 60, 100))

	assert.Equal(t, midi.ProgramChange{Channel: 0, Program: 5}, <-s.Events())
	assert.Equal(t, midi.ControlChange{Channel: 1, Controller: 2, Value: 100}, <-s.Events())
	assert.Equal(t, midi.Unhandled{Raw: []byte{0x90, 60, 100}}, <-s.Events())
}

func TestOpenInputWithoutDevice(t *testing.T) {
	s, _ := newSession(t, nil, nil)

	_, err := s.OpenInput()
	assert.ErrorIs(t, err, midi.ErrPortUnavailable)
	assert.False(t, s.Listening())
}

func TestCloseInputStopsDelivery(t *testing.T) {
	s, drv := newSession(t, nil, []string{"In"})
	_, err := s.OpenInput()
	require.NoError(t, err)

	in := drv.In("In")
	s.CloseInput()
	assert.NotPanics(t, s.CloseInput)

	assert.False(t, s.Listening())
	assert.Equal(t, 1, in.Stops())
	assert.False(t, in.Emit(0xC0, 1), "listener is unregistered")
	assert.Len(t, s.Events(), 0)
}

func TestCloseReleasesEverything(t *testing.T) {
	s, drv := newSession(t, []string{"A"}, []string{"In"})
	require.NoError(t, s.OpenOutput("A"))
	_, err := s.OpenInput()
	require.NoError(t, err)

	s.Close()
	s.Close()

	assert.Equal(t, 1, drv.Out("A").Closes())
	assert.False(t, drv.In("In").IsOpen())
	assert.True(t, drv.Closed())
	_, ok := <-s.Events()
	assert.False(t, ok)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		msg  []byte
		want midi.Event
	}{
		{"program change", []byte{0xC2, 42}, midi.ProgramChange{Channel: 2, Program: 42}},
		{"control change", []byte{0xB0, 7, 127}, midi.ControlChange{Channel: 0, Controller: 7, Value: 127}},
		{"note on", []byte{0x90, 60, 1}, midi.Unhandled{Raw: []byte{0x90, 60, 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, midi.Decode(tt.msg))
		})
	}
}
