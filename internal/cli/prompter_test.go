package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompter_Ask(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   string
		want  string
	}{
		{name: "answer", input: "Paris\n", want: "Paris"},
		{name: "default on empty", input: "\n", def: "France", want: "France"},
		{name: "answer beats default", input: "Lyon\n", def: "France", want: "Lyon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(strings.NewReader(tt.input), &out)

			got, err := p.Ask(context.Background(), "Target market", tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Target market")
		})
	}
}

func TestPrompter_AskSecretWithoutTerminal(t *testing.T) {
	p := NewPrompter(strings.NewReader("secret1\n"), &bytes.Buffer{})
	got, err := p.AskSecret(context.Background(), "Password")
	require.NoError(t, err)
	assert.Equal(t, "secret1", got)
}

func TestPrompter_Choose(t *testing.T) {
	options := []string{"Market Overview", "Competitor Analysis", "Opportunity Report"}

	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("2\n"), &out)
	idx, err := p.Choose(context.Background(), "Report type", options)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Contains(t, out.String(), "[3] Opportunity Report")

	for _, bad := range []string{"0\n", "4\n", "two\n"} {
		p := NewPrompter(strings.NewReader(bad), &bytes.Buffer{})
		_, err := p.Choose(context.Background(), "Report type", options)
		assert.ErrorIs(t, err, ErrInvalidChoice, bad)
	}
}

func TestPrompter_Confirmer(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(strings.NewReader(tt.input), &out)
			got := p.Confirmer(context.Background()).Confirm("Delete this analysis?")
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Delete this analysis? (y/N)")
		})
	}
}
