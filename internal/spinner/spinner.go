// Package spinner draws a one-line progress indicator while a results
// document is fetched from remote storage.
package spinner

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Interval is the delay between frames.
const Interval = 80 * time.Millisecond

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Start animates message on w until the returned stop function is called.
// stop clears the line and may be called more than once.
func Start(w io.Writer, message string) (stop func()) {
	done := make(chan struct{})
	cleared := make(chan struct{})
	var once sync.Once

	go func() {
		defer close(cleared)
		ticker := time.NewTicker(Interval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-done:
				fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", len([]rune(message))+2)) //nolint:errcheck
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s %s", frames[i%len(frames)], message) //nolint:errcheck
			}
		}
	}()

	return func() {
		once.Do(func() { close(done) })
		<-cleared
	}
}

// StartIf is Start when enabled and a no-op otherwise.
func StartIf(enabled bool, w io.Writer, message string) (stop func()) {
	if !enabled {
		return func() {}
	}
	return Start(w, message)
}
