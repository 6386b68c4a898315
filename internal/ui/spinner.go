package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var frames = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}

// Spinner shows an animated status line while a job runs. It stays silent
// when the output is not a terminal, so redirected logs are not polluted.
type Spinner struct {
	out     io.Writer
	enabled bool

	mu   sync.Mutex
	msg  string
	done chan struct{}
	wg   sync.WaitGroup
}

// NewSpinner creates a spinner writing to stderr.
func NewSpinner() *Spinner {
	return NewSpinnerTo(os.Stderr)
}

// NewSpinnerTo creates a spinner writing to w.
func NewSpinnerTo(w io.Writer) *Spinner {
	return &Spinner{out: w, enabled: isTerminal(w)}
}

// Start begins the animation with the given message.
func (s *Spinner) Start(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msg = msg
	if !s.enabled || s.done != nil {
		return
	}
	s.done = make(chan struct{})
	s.wg.Add(1)
	go s.run(s.done)
}

// Update changes the message while running. It matches ProgressFunc.
func (s *Spinner) Update(msg string) {
	s.mu.Lock()
	s.msg = msg
	s.mu.Unlock()
}

// Stop halts the animation and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	done := s.done
	s.done = nil
	s.mu.Unlock()
	if done == nil {
		return
	}
	close(done)
	s.wg.Wait()
	fmt.Fprint(s.out, "\r\033[K")
}

func (s *Spinner) run(done <-chan struct{}) {
	defer s.wg.Done()
	tick := time.NewTicker(80 * time.Millisecond)
	defer tick.Stop()

	for i := 0; ; i++ {
		select {
		case <-done:
			return
		case <-tick.C:
			s.mu.Lock()
			msg := s.msg
			s.mu.Unlock()
			fmt.Fprintf(s.out, "\r\033[K%c %s", frames[i%len(frames)], msg)
		}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
