package capture

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync"
)

const recorderChunkSize = 4096

// RecorderDevice captures the microphone by spawning an external recorder
// command (ffmpeg, arecord, sox, ...) that writes encoded audio to stdout.
// Stop sends an interrupt so the encoder can flush its container trailer
// before the stream closes.
type RecorderDevice struct {
	command     []string
	filename    string
	contentType string
}

// DefaultRecorderCommand is a sensible ffmpeg invocation for the current
// platform: 16 kHz mono WAV to stdout.
func DefaultRecorderCommand() []string {
	input := []string{"-f", "pulse", "-i", "default"}
	if runtime.GOOS == "darwin" {
		input = []string{"-f", "avfoundation", "-i", ":0"}
	}
	cmd := []string{"ffmpeg", "-hide_banner", "-loglevel", "error"}
	cmd = append(cmd, input...)
	return append(cmd, "-ac", "1", "-ar", "16000", "-f", "wav", "-")
}

// NewRecorderDevice builds a device around command. An empty command falls
// back to DefaultRecorderCommand.
func NewRecorderDevice(command []string) *RecorderDevice {
	if len(command) == 0 {
		command = DefaultRecorderCommand()
	}
	return &RecorderDevice{
		command:     command,
		filename:    "capture.wav",
		contentType: "audio/wav",
	}
}

func (d *RecorderDevice) Name() string {
	return fmt.Sprintf("recorder (%s)", d.command[0])
}

func (d *RecorderDevice) Format() (string, string) {
	return d.filename, d.contentType
}

// Start launches the recorder process and begins streaming its stdout.
func (d *RecorderDevice) Start(ctx context.Context) (Session, error) {
	cmd := exec.CommandContext(ctx, d.command[0], d.command[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", d.command[0], err)
	}

	session := &recorderSession{
		cmd:    cmd,
		chunks: make(chan []byte, 16),
	}
	go session.pump(stdout)
	return session, nil
}

type recorderSession struct {
	cmd    *exec.Cmd
	chunks chan []byte

	mu       sync.Mutex
	err      error
	stopOnce sync.Once
}

func (s *recorderSession) Chunks() <-chan []byte {
	return s.chunks
}

// Stop interrupts the recorder so it finalizes the stream. The chunk
// channel closes once stdout reaches EOF.
func (s *recorderSession) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		if s.cmd.Process != nil {
			err = s.cmd.Process.Signal(os.Interrupt)
		}
	})
	return err
}

func (s *recorderSession) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *recorderSession) pump(stdout io.Reader) {
	defer close(s.chunks)
	buf := make([]byte, recorderChunkSize)
	for {
		n, readErr := stdout.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			s.chunks <- chunk
		}
		if readErr != nil {
			waitErr := s.cmd.Wait()
			if readErr != io.EOF {
				s.setErr(readErr)
			} else if waitErr != nil && !interruptedExit(waitErr) {
				s.setErr(waitErr)
			}
			return
		}
	}
}

func (s *recorderSession) setErr(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
}

// interruptedExit reports whether the recorder exited because of the stop
// signal, which is the expected shutdown path rather than a failure.
func interruptedExit(err error) bool {
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		return false
	}
	// ffmpeg exits 255 on SIGINT after flushing; arecord exits 1. Treat any
	// signaled or small-code exit following our own interrupt as clean.
	code := exitErr.ExitCode()
	return code == -1 || code == 1 || code == 255
}
