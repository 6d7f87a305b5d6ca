package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRenderer_PlainWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, IsTerminal(&buf))

	render := NewRenderer(&buf)
	out, err := render("# Report\n\n- ok")
	require.NoError(t, err)
	assert.Equal(t, "# Report\n\n- ok", out)
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)

	out := buf.String()
	assert.Equal(t, len(bannerLines)+2, strings.Count(out, "\n"))
	assert.Contains(t, out, "|_|  \\__,_|")
	assert.NotContains(t, out, "\x1b[", "no color on a plain writer")
}
