// Package capture owns the recording device lifecycle: acquire, buffer
// chunks, and run the asynchronous stop/flush handshake that yields one
// finished audio payload. At most one capture session exists at a time.
package capture

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Target names the text field a finished transcript should land in.
type Target string

const (
	TargetInstruction Target = "instruction"
	TargetEdit        Target = "edit"
)

// State models the capture lifecycle.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateRecording:
		return "recording"
	case StateStopping:
		return "stopping"
	default:
		return "idle"
	}
}

// CaptureError reports a device or lifecycle failure.
type CaptureError struct {
	Op  string
	Err error
}

func (e *CaptureError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("capture error: %s", e.Op)
	}
	return fmt.Sprintf("capture error: %s: %v", e.Op, e.Err)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}

// Payload is one finished recording, ready for transcription.
type Payload struct {
	Data        []byte
	Filename    string
	ContentType string
	Target      Target
	Duration    time.Duration
}

// Result resolves the stop handshake: either a payload or the session error.
type Result struct {
	Payload Payload
	Err     error
}

// Session is a live recording. Chunks delivers audio data as it arrives and
// closes once the device has acknowledged Stop and flushed; Err reports any
// failure after the channel closes.
type Session interface {
	Chunks() <-chan []byte
	Stop() error
	Err() error
}

// Device acquires recording sessions and describes the payload they
// produce.
type Device interface {
	Start(ctx context.Context) (Session, error)
	Format() (filename, contentType string)
	Name() string
}

// payloadFormatter is implemented by sessions that know the name and
// content type of the audio they actually delivered, which may differ from
// the device default (a drop folder accepts several formats). An empty
// filename means no override.
type payloadFormatter interface {
	PayloadFormat() (filename, contentType string)
}

// Controller enforces the Idle → Recording → Stopping → Idle lifecycle over
// a Device. It is safe to poke from job goroutines.
type Controller struct {
	mu        sync.Mutex
	device    Device
	state     State
	target    Target
	session   Session
	chunks    [][]byte
	done      chan Result
	startedAt time.Time
}

// NewController wraps device. The controller is reusable across captures.
func NewController(device Device) *Controller {
	return &Controller{device: device}
}

// State reports the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start acquires the device and begins buffering chunks tagged with target.
// Starting while a capture is active is refused; the existing session is
// left untouched. Acquisition failure leaves the controller Idle.
func (c *Controller) Start(ctx context.Context, target Target) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return &CaptureError{Op: "a recording is already in progress"}
	}
	if c.device == nil {
		c.mu.Unlock()
		return &CaptureError{Op: "no capture device configured"}
	}
	// Hold Recording optimistically so a concurrent Start is refused while
	// the device spins up, then roll back on failure.
	c.state = StateRecording
	c.mu.Unlock()

	session, err := c.device.Start(ctx)
	if err != nil {
		c.mu.Lock()
		c.state = StateIdle
		c.mu.Unlock()
		return &CaptureError{Op: "device unavailable", Err: err}
	}

	c.mu.Lock()
	c.session = session
	c.target = target
	c.chunks = nil
	c.done = make(chan Result, 1)
	c.startedAt = time.Now()
	done := c.done
	c.mu.Unlock()

	go c.collect(session, done)
	return nil
}

// Stop signals the device to finalize and returns the completion future:
// a channel that resolves once the remaining chunks have been flushed and
// concatenated into one payload.
func (c *Controller) Stop() (<-chan Result, error) {
	c.mu.Lock()
	switch c.state {
	case StateRecording:
		c.state = StateStopping
		session, done := c.session, c.done
		c.mu.Unlock()
		// Stop errors surface through Session.Err in the result; the
		// collector drains and resolves either way.
		_ = session.Stop()
		return done, nil
	case StateStopping:
		done := c.done
		c.mu.Unlock()
		return done, nil
	default:
		if c.done != nil {
			// The session ended on its own (device error or EOF); hand the
			// caller the pending result.
			done := c.done
			c.done = nil
			c.mu.Unlock()
			return done, nil
		}
		c.mu.Unlock()
		return nil, &CaptureError{Op: "no recording in progress"}
	}
}

// collect drains the session's chunk channel, then resolves the stop future
// with the concatenated payload and returns the controller to Idle.
func (c *Controller) collect(session Session, done chan Result) {
	for chunk := range session.Chunks() {
		if len(chunk) == 0 {
			continue
		}
		buf := append([]byte(nil), chunk...)
		c.mu.Lock()
		c.chunks = append(c.chunks, buf)
		c.mu.Unlock()
	}

	c.mu.Lock()
	total := 0
	for _, chunk := range c.chunks {
		total += len(chunk)
	}
	data := make([]byte, 0, total)
	for _, chunk := range c.chunks {
		data = append(data, chunk...)
	}
	filename, contentType := c.device.Format()
	if formatter, ok := session.(payloadFormatter); ok {
		if name, ctype := formatter.PayloadFormat(); name != "" {
			filename, contentType = name, ctype
		}
	}
	result := Result{
		Payload: Payload{
			Data:        data,
			Filename:    filename,
			ContentType: contentType,
			Target:      c.target,
			Duration:    time.Since(c.startedAt),
		},
	}
	if err := session.Err(); err != nil {
		result.Err = &CaptureError{Op: "recording failed", Err: err}
	} else if len(data) == 0 {
		result.Err = &CaptureError{Op: "no audio captured"}
	}
	if c.state == StateStopping {
		// Stop already handed the future to its caller; drop our reference
		// so a later idle Stop reports no recording instead of returning a
		// drained channel. A session that ended on its own keeps done set
		// for the next Stop to collect.
		c.done = nil
	}
	c.chunks = nil
	c.session = nil
	c.state = StateIdle
	c.mu.Unlock()

	done <- result
}
