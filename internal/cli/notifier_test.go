package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/marketpulse/internal/resource"
	"github.com/stretchr/testify/assert"
)

func TestNotifier(t *testing.T) {
	var out bytes.Buffer
	n := NewNotifier(&out)

	n.Notify(resource.Notice{Level: resource.LevelSuccess, Message: "Analysis created successfully"})
	n.Notify(resource.Notice{Level: resource.LevelError, Message: "Failed to load analyses"})
	n.Notify(resource.Notice{Message: "Nothing to show"})

	text := out.String()
	assert.Contains(t, text, SuccessIcon+" Analysis created successfully")
	assert.Contains(t, text, ErrorIcon+" Failed to load analyses")
	assert.Contains(t, text, "Nothing to show")
}

func TestReported(t *testing.T) {
	base := errors.New("boom")
	assert.Nil(t, Reported(nil))

	err := fmt.Errorf("command: %w", Reported(base))
	assert.True(t, WasReported(err))
	assert.ErrorIs(t, err, base)
	assert.False(t, WasReported(base))
}

func TestSpinner_StopIsIdempotent(t *testing.T) {
	out := &syncBuffer{}
	s := StartSpinner(out, "Generating report")
	time.Sleep(250 * time.Millisecond)
	s.Stop()
	s.Stop()
}
