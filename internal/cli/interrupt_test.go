package cli

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type lockedWriter struct {
	sb strings.Builder
	mu sync.Mutex
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sb.Write(p)
}

func (w *lockedWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sb.String()
}

func TestGuardRequest_Interrupt(t *testing.T) {
	out := &lockedWriter{}
	ctx, g := GuardRequest(context.Background(), out, "Report generation")
	assert.NoError(t, ctx.Err())

	g.Interrupt()
	g.Interrupt()

	<-ctx.Done()
	assert.True(t, Interrupted(ctx))
	assert.Equal(t, 1, strings.Count(out.String(), "Report generation interrupted"))
	assert.Contains(t, out.String(), "The server may still finish it")
}

func TestGuardRequest_ReleaseIsSilent(t *testing.T) {
	out := &lockedWriter{}
	ctx, g := GuardRequest(context.Background(), out, "")

	g.Release()
	<-ctx.Done()
	assert.False(t, Interrupted(ctx))
	assert.Empty(t, out.String())

	g.Interrupt()
	assert.Contains(t, out.String(), "Request interrupted")
}

func TestInterrupted_ParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, g := GuardRequest(parent, &lockedWriter{}, "Analysis creation")
	defer g.Release()

	cancel()
	<-ctx.Done()
	assert.False(t, Interrupted(ctx))
}
