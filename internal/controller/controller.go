package controller

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/PixPMusic/ampswitcher/internal/config"
	"github.com/PixPMusic/ampswitcher/internal/midi"
	"github.com/PixPMusic/ampswitcher/internal/profile"
	"github.com/PixPMusic/ampswitcher/internal/recorder"
)

var (
	// ErrInvalidState is returned when an operation is not allowed in the current state.
	ErrInvalidState = errors.New("operation not allowed in current state")
	// ErrNoButton is returned when pressing an index outside the layout.
	ErrNoButton = errors.New("no such button")
	// ErrNoRecording is returned when saving before a recording was generated.
	ErrNoRecording = errors.New("no recorded profile")
)

// SampleProfile is the file the bundled sample is written to when the
// configured profile cannot be read.
const SampleProfile = "sample.json"

// State is the lifecycle state of the controller.
type State int

const (
	Uninitialized State = iota
	Ready
	ProfileSwitching
	SettingsEditing
	Recording
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case ProfileSwitching:
		return "profile_switching"
	case SettingsEditing:
		return "settings_editing"
	case Recording:
		return "recording"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Listener receives presentation updates.
type Listener interface {
	// ApplyState replaces the displayed profile and layout settings.
	ApplyState(p *profile.Profile, s *config.Settings)
	// Status shows a short user-facing message.
	Status(msg string)
}

type nopListener struct{}

func (nopListener) ApplyState(*profile.Profile, *config.Settings) {}
func (nopListener) Status(string)                                 {}

// Controller owns the application state and drives the MIDI session. It is
// not safe for concurrent use; callers run it from a single loop.
type Controller struct {
	session  *midi.Session
	store    *config.Store
	profiles *profile.Store
	listener Listener

	state     State
	settings  *config.Settings
	profile   *profile.Profile
	recorder  *recorder.Recorder
	candidate *profile.Profile
}

// New creates a controller in the Uninitialized state.
func New(session *midi.Session, store *config.Store, profiles *profile.Store) *Controller {
	return &Controller{
		session:  session,
		store:    store,
		profiles: profiles,
		listener: nopListener{},
		recorder: recorder.New(),
	}
}

// SetListener registers the presentation layer. nil detaches it.
func (c *Controller) SetListener(l Listener) {
	if l == nil {
		l = nopListener{}
	}
	c.listener = l
}

// Start loads settings and the referenced profile, connects the configured
// output and moves to Ready. Failures along the way are logged and reported
// through the listener; none of them prevents startup.
func (c *Controller) Start() error {
	if c.state != Uninitialized {
		return fmt.Errorf("%w: start while %s", ErrInvalidState, c.state)
	}

	c.settings = c.store.Load()
	if err := c.profiles.EnsureStorage(); err != nil {
		slog.Error("cannot create profiles directory", "dir", c.profiles.Dir(), "err", err)
	}
	p, saveErr := c.resolveProfile()
	c.profile = p
	c.session.SetChannel(c.profile.Channel)

	c.state = Ready
	c.notify()

	connErr := c.connectConfigured()
	switch {
	case saveErr != nil:
		c.status(fmt.Sprintf("Error saving settings: %v", saveErr))
	case connErr != nil:
		c.status(connErr.Error())
	default:
		c.status("Ready")
	}
	slog.Info("controller started", "profile", c.settings.Profile, "output", c.session.Output(), "channel", c.profile.Channel)
	return nil
}

// resolveProfile loads the configured profile, falling back to the sample.
// The error reports a failure to persist the settings repointed at the sample.
func (c *Controller) resolveProfile() (*profile.Profile, error) {
	name := c.settings.Profile
	p, err := c.profiles.Load(name)
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, profile.ErrProfileNotFound):
		if saveErr := c.profiles.Save(name, p); saveErr != nil {
			slog.Error("cannot create missing profile", "file", name, "err", saveErr)
		}
		return p, nil
	default:
		slog.Error("profile cannot be loaded, loading sample profile instead", "file", name, "err", err)
		sample := profile.Sample()
		if !c.profiles.Exists(SampleProfile) {
			if saveErr := c.profiles.Save(SampleProfile, sample); saveErr != nil {
				slog.Error("cannot write sample profile", "err", saveErr)
			}
		}
		c.settings.Profile = SampleProfile
		return sample, c.store.Save(c.settings)
	}
}

// connectConfigured opens the first output whose name contains the configured
// port name.
func (c *Controller) connectConfigured() error {
	want := c.settings.PortName
	if want == "" {
		slog.Warn("no MIDI output configured")
		return fmt.Errorf("%w: no MIDI output configured", midi.ErrPortUnavailable)
	}
	for _, name := range c.session.ListOutputs() {
		if strings.Contains(name, want) {
			return c.session.OpenOutput(name)
		}
	}
	c.session.CloseOutput()
	slog.Error("MIDI port not found", "port", want)
	return fmt.Errorf("%w: MIDI port '%s' not found", midi.ErrPortUnavailable, want)
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// Settings returns a copy of the active settings.
func (c *Controller) Settings() *config.Settings {
	if c.settings == nil {
		return nil
	}
	return c.settings.Clone()
}

// Profile returns a copy of the active profile.
func (c *Controller) Profile() *profile.Profile {
	if c.profile == nil {
		return nil
	}
	return c.profile.Clone()
}

// Buttons returns the active profile's buttons in layout order.
func (c *Controller) Buttons() []profile.ButtonSpec {
	if c.profile == nil {
		return nil
	}
	return c.profile.SortedButtons()
}

// Output returns the name of the open output, if any.
func (c *Controller) Output() string {
	return c.session.Output()
}

// Channel returns the session channel.
func (c *Controller) Channel() int {
	return c.session.Channel()
}

// Events exposes the MIDI input queue; the owning loop feeds it back through
// HandleEvent.
func (c *Controller) Events() <-chan midi.Event {
	return c.session.Events()
}

// Press sends the MIDI messages of the button at index in layout order.
func (c *Controller) Press(index int) error {
	if err := c.require(Ready); err != nil {
		return err
	}
	buttons := c.profile.SortedButtons()
	if index < 0 || index >= len(buttons) {
		return fmt.Errorf("%w: %d", ErrNoButton, index)
	}
	return c.Send(buttons[index])
}

// Send transmits the program change and control change of a button. Both
// are attempted; their failures are joined.
func (c *Controller) Send(b profile.ButtonSpec) error {
	if b.Inert() {
		c.status(fmt.Sprintf("Button '%s' has no MIDI message", b.Name))
		return nil
	}
	if !c.session.HasOutput() {
		slog.Warn("press without MIDI output", "button", b.Name)
		c.status("Please connect a valid MIDI output port and try again")
		return midi.ErrNoOutputConfigured
	}

	var (
		sent []string
		errs []error
	)
	if b.ProgramChange != nil {
		if err := c.session.SendProgramChange(*b.ProgramChange); err != nil {
			errs = append(errs, err)
		} else {
			sent = append(sent, fmt.Sprintf("Program: %d", *b.ProgramChange))
		}
	}
	if b.CCNumber != nil {
		value := 0
		if b.CCValue != nil {
			value = *b.CCValue
		}
		if err := c.session.SendControlChange(*b.CCNumber, value); err != nil {
			errs = append(errs, err)
		} else {
			sent = append(sent, fmt.Sprintf("Control: %d Value: %d", *b.CCNumber, value))
		}
	}

	if err := errors.Join(errs...); err != nil {
		slog.Error("MIDI send failed", "button", b.Name, "output", c.session.Output(), "err", err)
		c.status(fmt.Sprintf("MIDI send failed: %v", err))
		return err
	}
	c.status("MIDI " + strings.Join(sent, ", "))
	return nil
}

// Outputs lists the available output ports.
func (c *Controller) Outputs() []string {
	return c.session.ListOutputs()
}

// RefreshOutputs re-enumerates the outputs. An open output that disappeared
// is closed.
func (c *Controller) RefreshOutputs() []string {
	outputs := c.session.ListOutputs()
	if current := c.session.Output(); current != "" && !slices.Contains(outputs, current) {
		c.session.CloseOutput()
		slog.Warn("MIDI output disconnected", "port", current)
		c.status(fmt.Sprintf("MIDI output '%s' disconnected", current))
		return outputs
	}
	c.status(fmt.Sprintf("%d MIDI outputs found", len(outputs)))
	return outputs
}

// SelectOutput records the port in the settings and opens it. On failure the
// session is left without an output.
func (c *Controller) SelectOutput(name string) error {
	if err := c.require(Ready); err != nil {
		return err
	}
	c.settings.PortName = name

	if name == "" {
		c.session.CloseOutput()
		c.status("MIDI Output selected cannot be empty")
		return fmt.Errorf("%w: empty port name", midi.ErrPortUnavailable)
	}
	if err := c.session.OpenOutput(name); err != nil {
		slog.Error("error opening MIDI port", "port", name, "err", err)
		c.status(fmt.Sprintf("Cannot open MIDI output '%s'", name))
		return err
	}
	c.status(fmt.Sprintf("MIDI output '%s' selected", name))
	return nil
}

// SelectChannel sets the channel on the active profile and the session.
func (c *Controller) SelectChannel(n int) error {
	if err := c.require(Ready); err != nil {
		return err
	}
	if n < 0 || n > profile.MaxChannel {
		return fmt.Errorf("%w: channel %d outside 0-%d", midi.ErrValueRange, n, profile.MaxChannel)
	}
	c.profile.Channel = n
	c.session.SetChannel(n)
	c.status(fmt.Sprintf("MIDI channel %d selected.", n))
	return nil
}

// SaveChannel writes the active profile, with its current channel, back to
// its file.
func (c *Controller) SaveChannel() error {
	if err := c.require(Ready); err != nil {
		return err
	}
	if err := c.profiles.Save(c.settings.Profile, c.profile); err != nil {
		c.status(fmt.Sprintf("Error saving profile data: %v", err))
		return err
	}
	c.status(fmt.Sprintf("MIDI channel saved on profile '%s'", c.settings.Profile))
	return nil
}

// SaveSettings persists the active settings.
func (c *Controller) SaveSettings() error {
	if c.settings == nil {
		return fmt.Errorf("%w: not started", ErrInvalidState)
	}
	if err := c.store.Save(c.settings); err != nil {
		c.status(fmt.Sprintf("Error saving settings: %v", err))
		return err
	}
	c.status("Settings saved successfully")
	return nil
}

// ChangeProfile loads the named profile and makes it active. On a load error
// the current profile stays active.
func (c *Controller) ChangeProfile(name string) error {
	if err := c.require(Ready); err != nil {
		return err
	}
	c.state = ProfileSwitching
	defer func() { c.state = Ready }()

	p, err := c.profiles.Load(name)
	if err != nil {
		c.status(fmt.Sprintf("Cannot load profile '%s'", name))
		if errors.Is(err, profile.ErrProfileNotFound) {
			slog.Warn("profile not found", "file", name)
		}
		return err
	}
	if err := c.activate(name, p); err != nil {
		c.status(fmt.Sprintf("Profile loaded but settings not saved: %v", err))
		return err
	}
	c.status("Profile loaded")
	return nil
}

// activate installs p as the active profile stored under name and persists
// the settings pointer.
func (c *Controller) activate(name string, p *profile.Profile) error {
	c.profile = p
	c.settings.Profile = name
	c.session.SetChannel(p.Channel)
	err := c.store.Save(c.settings)
	c.notify()
	slog.Info("profile activated", "file", name, "channel", p.Channel, "buttons", len(p.Buttons))
	return err
}

// NewProfile writes the starter template under name and switches to it.
func (c *Controller) NewProfile(name string) error {
	if err := c.require(Ready); err != nil {
		return err
	}
	c.state = ProfileSwitching
	defer func() { c.state = Ready }()

	p := profile.Template()
	if err := c.profiles.Save(name, p); err != nil {
		c.status(fmt.Sprintf("Error creating profile: %v", err))
		return err
	}
	if err := c.activate(name, p); err != nil {
		c.status(fmt.Sprintf("New profile %s created but settings not saved: %v", name, err))
		return err
	}
	c.status(fmt.Sprintf("New profile %s created successfully", name))
	return nil
}

// ImportProfile copies a profile file into the profiles directory and
// switches to it.
func (c *Controller) ImportProfile(srcPath string) error {
	if err := c.require(Ready); err != nil {
		return err
	}
	name, err := c.profiles.Import(srcPath)
	if err != nil {
		c.status(fmt.Sprintf("Cannot import %s", filepath.Base(srcPath)))
		return err
	}
	return c.ChangeProfile(name)
}

// ExportProfile writes the active profile to dstPath.
func (c *Controller) ExportProfile(dstPath string) error {
	if c.profile == nil {
		return fmt.Errorf("%w: not started", ErrInvalidState)
	}
	if err := c.profiles.Export(c.profile, dstPath); err != nil {
		c.status(fmt.Sprintf("Error exporting profile: %v", err))
		return err
	}
	c.status(fmt.Sprintf("Profile exported successfully: %s", filepath.Base(dstPath)))
	return nil
}

// UpdateProfile replaces the active profile with an edited document and
// saves it to the active profile file.
func (c *Controller) UpdateProfile(p *profile.Profile) error {
	if err := c.require(Ready); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		c.status(fmt.Sprintf("Invalid profile: %v", err))
		return err
	}
	p = p.Clone()
	if err := c.profiles.Save(c.settings.Profile, p); err != nil {
		c.status(fmt.Sprintf("Error saving profile: %v", err))
		return err
	}
	c.profile = p
	c.session.SetChannel(p.Channel)
	c.notify()
	c.status("Profile saved successfully")
	return nil
}

// EditSettings enters SettingsEditing and returns a copy to edit.
func (c *Controller) EditSettings() (*config.Settings, error) {
	if err := c.require(Ready); err != nil {
		return nil, err
	}
	c.state = SettingsEditing
	return c.settings.Clone(), nil
}

// CancelSettings leaves SettingsEditing without changes.
func (c *Controller) CancelSettings() {
	if c.state == SettingsEditing {
		c.state = Ready
	}
}

// UpdateSettings replaces and saves the settings. A changed port name is
// resolved again against the available outputs, and a changed profile is
// loaded and made active. On a validation or load error the controller stays
// in SettingsEditing. A failed reconnect is reported through the status only.
func (c *Controller) UpdateSettings(s *config.Settings) error {
	if err := c.require(SettingsEditing); err != nil {
		return err
	}
	if s.Channel < 0 || s.Channel > config.MaxChannel {
		c.status(fmt.Sprintf("Channel %d outside 0-%d", s.Channel, config.MaxChannel))
		return fmt.Errorf("%w: channel %d outside 0-%d", midi.ErrValueRange, s.Channel, config.MaxChannel)
	}

	s = s.Clone()
	s.FillDefaults()

	active := c.profile
	if s.Profile != c.settings.Profile {
		p, err := c.profiles.Load(s.Profile)
		if err != nil {
			c.status(fmt.Sprintf("Cannot load profile '%s'", s.Profile))
			return err
		}
		active = p
	}
	c.state = Ready

	portChanged := s.PortName != c.settings.PortName
	c.settings = s
	if active != c.profile {
		c.profile = active
		c.session.SetChannel(active.Channel)
		slog.Info("profile activated", "file", s.Profile, "channel", active.Channel, "buttons", len(active.Buttons))
	}

	var connErr error
	if portChanged {
		connErr = c.connectConfigured()
	}
	c.notify()

	if err := c.SaveSettings(); err != nil {
		return err
	}
	if connErr != nil {
		c.status(fmt.Sprintf("Settings saved, but %v", connErr))
	}
	return nil
}

// StartRecording opens the MIDI input and starts capturing events.
func (c *Controller) StartRecording() (string, error) {
	if err := c.require(Ready); err != nil {
		return "", err
	}
	name, err := c.session.OpenInput()
	if err != nil {
		c.status(fmt.Sprintf("Error starting MIDI input: %v", err))
		return "", err
	}
	c.state = Recording
	slog.Info("recording started", "input", name, "take", c.recorder.TakeID())
	c.status("MIDI Input Capture")
	return name, nil
}

// HandleEvent records an input event. Events arriving outside Recording are
// ignored; the return value reports whether ev was recorded.
func (c *Controller) HandleEvent(ev midi.Event) bool {
	if c.state != Recording {
		slog.Debug("ignoring MIDI input", "state", c.state, "event", ev.String())
		return false
	}
	c.recorder.Record(ev)
	c.status(fmt.Sprintf("Received MIDI message: %s", ev))
	return true
}

// StopRecording closes the input and synthesizes a candidate profile from
// the captured events. Outside Recording it only makes sure the input is
// closed and returns the existing candidate.
func (c *Controller) StopRecording() *profile.Profile {
	c.session.CloseInput()
	if c.state != Recording {
		return c.Candidate()
	}
	c.state = Ready
	c.candidate = c.recorder.Synthesize()
	c.status("Profile generated")
	return c.candidate.Clone()
}

// ClearRecording drops captured events and the candidate.
func (c *Controller) ClearRecording() {
	c.recorder.Reset()
	c.candidate = nil
	c.status("Clear MIDI log and editor")
}

// RecordedEvents returns the captured events in arrival order.
func (c *Controller) RecordedEvents() []midi.Event {
	return c.recorder.Events()
}

// Candidate returns the last synthesized profile, or nil.
func (c *Controller) Candidate() *profile.Profile {
	if c.candidate == nil {
		return nil
	}
	return c.candidate.Clone()
}

// RecordingName suggests a file name for the current take.
func (c *Controller) RecordingName() string {
	return fmt.Sprintf("recorded-%s.json", c.recorder.TakeID()[:8])
}

// SaveRecording writes the candidate profile under name. It does not switch
// to it.
func (c *Controller) SaveRecording(name string) error {
	if c.candidate == nil {
		c.status("Nothing to save")
		return ErrNoRecording
	}
	if err := c.profiles.Save(name, c.candidate); err != nil {
		c.status(fmt.Sprintf("Error saving profile: %v", err))
		return err
	}
	c.status(fmt.Sprintf("Profile exported successfully: %s", name))
	return nil
}

// ProfilesDir returns the directory profiles are stored in.
func (c *Controller) ProfilesDir() string {
	return c.profiles.Dir()
}

// ListProfiles returns the profile files available to ChangeProfile.
func (c *Controller) ListProfiles() ([]string, error) {
	return c.profiles.List()
}

// Shutdown releases the MIDI ports and the driver. Safe to call more than once.
func (c *Controller) Shutdown() {
	c.session.Close()
	c.state = Uninitialized
	slog.Info("controller shut down")
}

func (c *Controller) require(want State) error {
	if c.state != want {
		return fmt.Errorf("%w: %s, want %s", ErrInvalidState, c.state, want)
	}
	return nil
}

func (c *Controller) notify() {
	c.listener.ApplyState(c.profile.Clone(), c.settings.Clone())
}

func (c *Controller) status(msg string) {
	slog.Debug("status", "msg", msg)
	c.listener.Status(msg)
}
