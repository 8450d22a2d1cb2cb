package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsole_Render(t *testing.T) {
	c := NewConsole(&bytes.Buffer{}, ConsoleConfig{Width: 21})

	out := c.Render("A", "Artist1")

	assert.Contains(t, out, "A")
	assert.Contains(t, out, "Artist1")
	assert.True(t, strings.HasSuffix(out, "\r\n"))
	for _, line := range strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n") {
		assert.Equal(t, 23, lipgloss.Width(line), "border plus 21 columns: %q", line)
	}
}

func TestConsole_RenderTruncates(t *testing.T) {
	c := NewConsole(&bytes.Buffer{}, ConsoleConfig{Width: 8, NoBorder: true})

	out := c.Render("A very long song title", "Someone")

	lines := strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Equal(t, 8, lipgloss.Width(line))
	}
	assert.Contains(t, out, "A very l")
}

func TestConsole_ShowSelectionWrites(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, ConsoleConfig{Width: 21})

	c.ShowSelection("Track", "Unknown")

	assert.Contains(t, buf.String(), "Track")
	assert.Contains(t, buf.String(), "Unknown")
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		kind     string
		settings map[string]any
		wantErr  bool
	}{
		{name: "console defaults", kind: "console"},
		{name: "console custom", kind: "console", settings: map[string]any{"width": 16, "no_border": true}},
		{name: "console invalid width", kind: "console", settings: map[string]any{"width": 1}, wantErr: true},
		{name: "log", kind: "log"},
		{name: "unknown", kind: "oled", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.kind, tt.settings, &bytes.Buffer{})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, p)
		})
	}
}

func TestLog_ShowSelection(t *testing.T) {
	assert.NotPanics(t, func() { NewLog().ShowSelection("A", "Artist1") })
}
