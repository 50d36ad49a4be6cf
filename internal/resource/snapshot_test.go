package resource

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	var fail bool
	load := func(context.Context, string) (int, error) {
		if fail {
			return 0, errors.New("boom")
		}
		return 42, nil
	}

	rec := &Recorder{}
	s := NewSnapshot("stats", load, "Failed to load stats", rec, &stubSession{header: "Bearer t"})

	_, ok := s.Value()
	assert.False(t, ok)

	require.NoError(t, s.Mount(ctx))
	v, ok := s.Value()
	assert.True(t, ok)
	assert.Equal(t, 42, v)
	assert.False(t, s.Loading())

	fail = true
	require.Error(t, s.Mount(ctx))
	_, ok = s.Value()
	assert.False(t, ok)
	assert.Error(t, s.LastError())
	assert.Equal(t, []Notice{{Level: LevelError, Message: "Failed to load stats"}}, rec.Notices())
}
