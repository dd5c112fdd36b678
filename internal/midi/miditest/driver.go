// Package miditest provides an in-memory gomidi driver for tests.
package miditest

import (
	"errors"
	"sync"

	"gitlab.com/gomidi/midi/v2/drivers"
)

// Driver is a drivers.Driver whose ports live in memory.
type Driver struct {
	mu     sync.Mutex
	outs   []*Out
	ins    []*In
	closed bool
}

// New creates a driver with one output per name in outs and one input per
// name in ins.
func New(outs []string, ins []string) *Driver {
	d := &Driver{}
	for i, name := range outs {
		d.outs = append(d.outs, &Out{name: name, number: i})
	}
	for i, name := range ins {
		d.ins = append(d.ins, &In{name: name, number: i})
	}
	return d
}

// Out returns the output port with the given name, or nil.
func (d *Driver) Out(name string) *Out {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, o := range d.outs {
		if o.name == name {
			return o
		}
	}
	return nil
}

// In returns the input port with the given name, or nil.
func (d *Driver) In(name string) *In {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, in := range d.ins {
		if in.name == name {
			return in
		}
	}
	return nil
}

// Unplug removes a port of either direction, simulating a device going away.
func (d *Driver) Unplug(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	outs := d.outs[:0]
	for _, o := range d.outs {
		if o.name != name {
			outs = append(outs, o)
		}
	}
	d.outs = outs
	ins := d.ins[:0]
	for _, in := range d.ins {
		if in.name != name {
			ins = append(ins, in)
		}
	}
	d.ins = ins
}

// Closed reports whether Close was called.
func (d *Driver) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *Driver) Ins() ([]drivers.In, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	res := make([]drivers.In, 0, len(d.ins))
	for _, in := range d.ins {
		res = append(res, in)
	}
	return res, nil
}

func (d *Driver) Outs() ([]drivers.Out, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	res := make([]drivers.Out, 0, len(d.outs))
	for _, o := range d.outs {
		res = append(res, o)
	}
	return res, nil
}

func (d *Driver) String() string { return "miditest" }

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Out is an output port recording what is sent to it.
type Out struct {
	mu      sync.Mutex
	name    string
	number  int
	open    bool
	opens   int
	closes  int
	sent    [][]byte
	FailOn  func(data []byte) error
	OpenErr error
}

// Opens returns how many times the port was opened.
func (o *Out) Opens() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opens
}

// Closes returns how many times an open port was closed.
func (o *Out) Closes() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closes
}

// Sent returns copies of every message sent so far.
func (o *Out) Sent() [][]byte {
	o.mu.Lock()
	defer o.mu.Unlock()
	res := make([][]byte, len(o.sent))
	for i, m := range o.sent {
		res[i] = append([]byte(nil), m...)
	}
	return res
}

func (o *Out) Open() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.OpenErr != nil {
		return o.OpenErr
	}
	if o.open {
		return nil
	}
	o.open = true
	o.opens++
	return nil
}

func (o *Out) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.open {
		return nil
	}
	o.open = false
	o.closes++
	return nil
}

func (o *Out) IsOpen() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.open
}

func (o *Out) Number() int             { return o.number }
func (o *Out) String() string          { return o.name }
func (o *Out) Underlying() interface{} { return o }

func (o *Out) Send(data []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.open {
		return errors.New("miditest: port not open")
	}
	if o.FailOn != nil {
		if err := o.FailOn(data); err != nil {
			return err
		}
	}
	o.sent = append(o.sent, append([]byte(nil), data...))
	return nil
}

// In is an input port; tests push bytes into it with Emit.
type In struct {
	mu       sync.Mutex
	name     string
	number   int
	open     bool
	listener func(msg []byte, milliseconds int32)
	stops    int
}

// Emit delivers a message to the active listener, as the driver thread would.
// It reports whether a listener was registered.
func (in *In) Emit(data ...byte) bool {
	in.mu.Lock()
	l := in.listener
	in.mu.Unlock()
	if l == nil {
		return false
	}
	l(data, 0)
	return true
}

// Stops returns how many times a listener was stopped.
func (in *In) Stops() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.stops
}

func (in *In) Open() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.open = true
	return nil
}

func (in *In) Close() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.open = false
	in.listener = nil
	return nil
}

func (in *In) IsOpen() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.open
}

func (in *In) Number() int             { return in.number }
func (in *In) String() string          { return in.name }
func (in *In) Underlying() interface{} { return in }

func (in *In) Listen(onMsg func(msg []byte, milliseconds int32), _ drivers.ListenConfig) (func(), error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if !in.open {
		return nil, errors.New("miditest: port not open")
	}
	in.listener = onMsg
	return func() {
		in.mu.Lock()
		defer in.mu.Unlock()
		if in.listener != nil {
			in.listener = nil
			in.stops++
		}
	}, nil
}
