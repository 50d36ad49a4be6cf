package themes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByName(t *testing.T) {
	theme, ok := ByName(" Catppuccin-Mocha ")
	assert.True(t, ok)
	assert.Equal(t, CatppuccinMocha.Primary, theme.Primary)

	_, ok = ByName("solarized")
	assert.False(t, ok)

	assert.Equal(t, []string{"catppuccin-mocha", "default"}, Names())
}
