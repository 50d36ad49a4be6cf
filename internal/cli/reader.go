package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrPromptCanceled is returned when a prompt is abandoned because its
// context ended, typically on Ctrl+C.
var ErrPromptCanceled = errors.New("prompt canceled")

type line struct {
	err  error
	text string
}

// lineReader reads input lines on a background goroutine so a prompt can
// be abandoned when its context ends. The goroutine only reads when a prompt
// asks for a line; it must never sit on the terminal while a secret is read
// directly from the file descriptor.
type lineReader struct {
	src     *bufio.Scanner
	want    chan struct{}
	lines   chan line
	once    sync.Once
	mu      sync.Mutex
	pending bool
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{
		src:   bufio.NewScanner(r),
		want:  make(chan struct{}, 1),
		lines: make(chan line),
	}
}

func (r *lineReader) pump() {
	var done error
	for range r.want {
		if done == nil && !r.src.Scan() {
			if done = r.src.Err(); done == nil {
				done = io.EOF
			}
		}
		if done != nil {
			r.lines <- line{err: done}
			continue
		}
		r.lines <- line{text: r.src.Text()}
	}
}

// next returns the next trimmed line, io.EOF once input is exhausted, or
// ErrPromptCanceled when ctx ends first. A line that arrives after its
// prompt was canceled goes to the following prompt.
func (r *lineReader) next(ctx context.Context) (string, error) {
	r.once.Do(func() { go r.pump() })

	r.mu.Lock()
	if !r.pending {
		r.pending = true
		r.want <- struct{}{}
	}
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return "", ErrPromptCanceled
	case l := <-r.lines:
		r.mu.Lock()
		r.pending = false
		r.mu.Unlock()
		if l.err != nil {
			return "", l.err
		}
		return strings.TrimSpace(l.text), nil
	}
}
