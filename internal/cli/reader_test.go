package cli

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineReader_Next(t *testing.T) {
	r := newLineReader(strings.NewReader("a@b.com\n  Coffee shops  \n\nlast"))
	ctx := context.Background()

	for _, want := range []string{"a@b.com", "Coffee shops", "", "last"} {
		got, err := r.next(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	for range 2 {
		_, err := r.next(ctx)
		assert.ErrorIs(t, err, io.EOF)
	}
}

func TestLineReader_CanceledPromptKeepsLine(t *testing.T) {
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })
	r := newLineReader(pr)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := r.next(ctx)
	require.ErrorIs(t, err, ErrPromptCanceled)

	go func() { _, _ = pw.Write([]byte("EU e-bikes\n")) }()

	got, err := r.next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "EU e-bikes", got)
}
