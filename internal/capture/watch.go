package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchSettle is how long a file must sit unmodified before it is treated
// as fully written by the external dictation app.
const watchSettle = 500 * time.Millisecond

var watchExtensions = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".ogg":  "audio/ogg",
	".webm": "audio/webm",
	".flac": "audio/flac",
}

// WatchDevice is a capture device for setups without direct microphone
// access: it watches a drop folder and emits the bytes of each new audio
// file an external dictation app saves there while the session is live.
type WatchDevice struct {
	dir string
}

// NewWatchDevice watches dir for finished recordings.
func NewWatchDevice(dir string) *WatchDevice {
	return &WatchDevice{dir: dir}
}

func (d *WatchDevice) Name() string {
	return fmt.Sprintf("watch (%s)", d.dir)
}

func (d *WatchDevice) Format() (string, string) {
	// Fallback for a capture that flushed nothing; the session reports the
	// real file name and type via PayloadFormat otherwise.
	return "capture.wav", "audio/wav"
}

// Start begins watching the drop folder.
func (d *WatchDevice) Start(ctx context.Context) (Session, error) {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(d.dir); err != nil {
		watcher.Close()
		return nil, err
	}

	session := &watchSession{
		watcher: watcher,
		chunks:  make(chan []byte, 4),
		stop:    make(chan struct{}),
	}
	go session.loop()
	return session, nil
}

type watchSession struct {
	watcher *fsnotify.Watcher
	chunks  chan []byte
	stop    chan struct{}

	mu       sync.Mutex
	err      error
	fileName string
	fileType string
	stopOnce sync.Once
}

func (s *watchSession) Chunks() <-chan []byte {
	return s.chunks
}

func (s *watchSession) Stop() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *watchSession) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// PayloadFormat reports the name and content type of the first delivered
// file. The payload's bytes lead with that file, so its format is the one
// the transcription backend must be told about.
func (s *watchSession) PayloadFormat() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fileName, s.fileType
}

func (s *watchSession) recordFormat(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fileName != "" {
		return
	}
	s.fileName = filepath.Base(path)
	s.fileType = watchExtensions[strings.ToLower(filepath.Ext(path))]
}

// loop tracks files touched by the watcher and flushes each one as a chunk
// once writes have settled. Closing stop drains any pending file before the
// chunk channel closes.
func (s *watchSession) loop() {
	defer close(s.chunks)
	defer s.watcher.Close()

	pending := map[string]time.Time{}
	ticker := time.NewTicker(watchSettle / 2)
	defer ticker.Stop()

	flush := func(now time.Time, force bool) {
		for path, last := range pending {
			if !force && now.Sub(last) < watchSettle {
				continue
			}
			delete(pending, path)
			data, err := os.ReadFile(path)
			if err != nil || len(data) == 0 {
				continue
			}
			s.recordFormat(path)
			s.chunks <- data
		}
	}

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if _, ok := watchExtensions[strings.ToLower(filepath.Ext(event.Name))]; !ok {
				continue
			}
			pending[event.Name] = time.Now()
		case err, ok := <-s.watcher.Errors:
			if ok && err != nil {
				s.mu.Lock()
				if s.err == nil {
					s.err = err
				}
				s.mu.Unlock()
			}
		case now := <-ticker.C:
			flush(now, false)
		case <-s.stop:
			// Give a file mid-write a moment, then flush whatever arrived.
			time.Sleep(watchSettle)
			flush(time.Now(), true)
			return
		}
	}
}
