package midi

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

var (
	// ErrPortUnavailable is returned when a requested device is not among the enumerated ports.
	ErrPortUnavailable = errors.New("midi port unavailable")
	// ErrNoOutputConfigured is returned when sending without an open output.
	ErrNoOutputConfigured = errors.New("no midi output configured")
	// ErrValueRange is returned for data bytes outside 0-127.
	ErrValueRange = errors.New("midi value out of range")
)

// eventQueueSize bounds the input queue; events beyond it are dropped.
const eventQueueSize = 256

// Session owns at most one open output and one open input port.
type Session struct {
	drv drivers.Driver

	mu      sync.Mutex // guards the output handle and channel
	out     drivers.Out
	outName string
	send    func(midi.Message) error
	channel int

	inMu   sync.Mutex // serializes OpenInput/CloseInput
	in     drivers.In
	inName string
	stopIn func()

	gateMu sync.RWMutex // held for writing while input delivery is switched off
	gate   bool
	closed bool
	events chan Event
}

// NewSession creates a session on top of a driver. The session owns the driver
// and closes it in Close.
func NewSession(drv drivers.Driver) *Session {
	return &Session{
		drv:    drv,
		events: make(chan Event, eventQueueSize),
	}
}

// Close releases both ports and the driver. Safe to call more than once.
func (s *Session) Close() {
	s.CloseInput()
	s.CloseOutput()

	s.gateMu.Lock()
	if s.closed {
		s.gateMu.Unlock()
		return
	}
	s.closed = true
	close(s.events)
	s.gateMu.Unlock()

	if s.drv != nil {
		if err := s.drv.Close(); err != nil {
			slog.Warn("midi: driver close failed", "err", err)
		}
	}
}

// ListOutputs returns the names of the currently available output ports.
func (s *Session) ListOutputs() []string {
	outs, err := s.drv.Outs()
	if err != nil {
		slog.Error("midi: list outputs failed", "err", err)
		return nil
	}
	names := make([]string, 0, len(outs))
	for _, out := range outs {
		names = append(names, out.String())
	}
	return names
}

// ListInputs returns the names of the currently available input ports.
func (s *Session) ListInputs() []string {
	ins, err := s.drv.Ins()
	if err != nil {
		slog.Error("midi: list inputs failed", "err", err)
		return nil
	}
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}
	return names
}

// OpenOutput makes the named port the session output. The new handle is opened
// and published before the previous one is closed, so a concurrent send sees
// either the old or the new port, never a half-closed one. The port list is
// always re-enumerated, so re-selecting an unplugged output fails. On failure
// the session is left without an output.
func (s *Session) OpenOutput(name string) error {
	out, err := s.findOut(name)
	if err != nil {
		s.CloseOutput()
		return err
	}

	s.mu.Lock()
	if s.out != nil && s.outName == name && s.out.IsOpen() {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()
	if err := out.Open(); err != nil {
		s.CloseOutput()
		return fmt.Errorf("%w: open %q: %v", ErrPortUnavailable, name, err)
	}
	send, err := midi.SendTo(out)
	if err != nil {
		_ = out.Close()
		s.CloseOutput()
		return fmt.Errorf("%w: sender for %q: %v", ErrPortUnavailable, name, err)
	}

	s.mu.Lock()
	old := s.out
	s.out, s.outName, s.send = out, name, send
	s.mu.Unlock()

	if old != nil && old != out {
		if err := old.Close(); err != nil {
			slog.Warn("midi: closing previous output failed", "port", old.String(), "err", err)
		}
	}
	slog.Info("midi: output opened", "port", name)
	return nil
}

// CloseOutput closes the current output. No-op when none is open.
func (s *Session) CloseOutput() {
	s.mu.Lock()
	out := s.out
	s.out, s.outName, s.send = nil, "", nil
	s.mu.Unlock()

	if out == nil {
		return
	}
	if err := out.Close(); err != nil {
		slog.Warn("midi: output close failed", "port", out.String(), "err", err)
		return
	}
	slog.Info("midi: output closed", "port", out.String())
}

// Output returns the name of the open output, or "" when none is open.
func (s *Session) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outName
}

// HasOutput reports whether an output is open.
func (s *Session) HasOutput() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.send != nil
}

// SetChannel sets the channel used by subsequent sends. No I/O.
func (s *Session) SetChannel(n int) {
	s.mu.Lock()
	s.channel = n
	s.mu.Unlock()
}

// Channel returns the configured channel (before wire clamping).
func (s *Session) Channel() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channel
}

// SendProgramChange transmits a program change on the session channel.
func (s *Session) SendProgramChange(program int) error {
	if !validData(program) {
		return fmt.Errorf("%w: program %d", ErrValueRange, program)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.send == nil {
		return ErrNoOutputConfigured
	}
	msg := midi.ProgramChange(WireChannel(s.channel), uint8(program))
	if err := s.send(msg); err != nil {
		return fmt.Errorf("send program change to %s: %w", s.outName, err)
	}
	slog.Debug("midi: sent", "port", s.outName, "msg", msg.String())
	return nil
}

// SendControlChange transmits a control change on the session channel.
func (s *Session) SendControlChange(controller, value int) error {
	if !validData(controller) || !validData(value) {
		return fmt.Errorf("%w: controller %d value %d", ErrValueRange, controller, value)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.send == nil {
		return ErrNoOutputConfigured
	}
	msg := midi.ControlChange(WireChannel(s.channel), uint8(controller), uint8(value))
	if err := s.send(msg); err != nil {
		return fmt.Errorf("send control change to %s: %w", s.outName, err)
	}
	slog.Debug("midi: sent", "port", s.outName, "msg", msg.String())
	return nil
}

// OpenInput starts listening on the first available input port. Received
// messages are decoded and queued on Events. Returns the port name.
func (s *Session) OpenInput() (string, error) {
	s.inMu.Lock()
	defer s.inMu.Unlock()

	if s.in != nil {
		return s.inName, nil
	}

	ins, err := s.drv.Ins()
	if err != nil {
		return "", fmt.Errorf("%w: list inputs: %v", ErrPortUnavailable, err)
	}
	if len(ins) == 0 {
		return "", fmt.Errorf("%w: no input device", ErrPortUnavailable)
	}
	in := ins[0]
	name := in.String()

	s.gateMu.Lock()
	if s.closed {
		s.gateMu.Unlock()
		return "", fmt.Errorf("%w: session closed", ErrPortUnavailable)
	}
	s.gate = true
	s.gateMu.Unlock()

	if !in.IsOpen() {
		if err := in.Open(); err != nil {
			s.setGate(false)
			return "", fmt.Errorf("%w: open %q: %v", ErrPortUnavailable, name, err)
		}
	}
	stop, err := midi.ListenTo(in, s.deliver, midi.HandleError(func(listenErr error) {
		slog.Warn("midi: listener error", "port", name, "err", listenErr)
	}))
	if err != nil {
		s.setGate(false)
		_ = in.Close()
		return "", fmt.Errorf("%w: listen %q: %v", ErrPortUnavailable, name, err)
	}

	s.in, s.inName, s.stopIn = in, name, stop
	slog.Info("midi: input opened", "port", name)
	return name, nil
}

// CloseInput stops listening. Once it returns no further events are queued.
// No-op when no input is open.
func (s *Session) CloseInput() {
	s.inMu.Lock()
	defer s.inMu.Unlock()

	if s.in == nil {
		return
	}
	s.setGate(false)

	if s.stopIn != nil {
		s.stopIn()
	}
	if err := s.in.Close(); err != nil {
		slog.Warn("midi: input close failed", "port", s.inName, "err", err)
	}
	slog.Info("midi: input closed", "port", s.inName)
	s.in, s.inName, s.stopIn = nil, "", nil
}

// Listening reports whether an input is open.
func (s *Session) Listening() bool {
	s.inMu.Lock()
	defer s.inMu.Unlock()
	return s.in != nil
}

// Events is the queue of decoded input messages. It is closed by Close.
func (s *Session) Events() <-chan Event {
	return s.events
}

// deliver runs on the driver's thread; it must not block.
func (s *Session) deliver(msg midi.Message, _ int32) {
	ev := Decode(msg)

	s.gateMu.RLock()
	defer s.gateMu.RUnlock()
	if !s.gate || s.closed {
		return
	}
	select {
	case s.events <- ev:
	default:
		slog.Warn("midi: input queue full, dropping", "msg", ev.String())
	}
}

func (s *Session) setGate(open bool) {
	s.gateMu.Lock()
	s.gate = open
	s.gateMu.Unlock()
}

func (s *Session) findOut(name string) (drivers.Out, error) {
	outs, err := s.drv.Outs()
	if err != nil {
		return nil, fmt.Errorf("%w: list outputs: %v", ErrPortUnavailable, err)
	}
	for _, out := range outs {
		if out.String() == name {
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: output not found: %s", ErrPortUnavailable, name)
}

// WireChannel maps a configured channel onto the 0-15 wire range. Profiles
// allow 16, which means "not set"; it and anything else out of range go out
// on channel 0.
func WireChannel(n int) uint8 {
	if n < 0 || n > 15 {
		return 0
	}
	return uint8(n)
}

func validData(v int) bool {
	return v >= 0 && v <= 127
}
