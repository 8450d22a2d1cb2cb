package display

import (
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	zlog "github.com/rs/zerolog/log"
)

// ConsoleConfig represents the settings of the console presenter.
// The defaults match a 128x32 OLED with a 6x8 font: 21 columns, two text rows.
type ConsoleConfig struct {
	Width    int    `mapstructure:"width" default:"21" validate:"gte=4,lte=200"`
	Color    string `mapstructure:"color" default:"86"`
	NoBorder bool   `mapstructure:"no_border"`
}

// Console renders the selection as a small panel on a terminal.
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	width  int
	song   lipgloss.Style
	artist lipgloss.Style
	frame  lipgloss.Style
}

// NewConsole creates a console presenter writing to out.
func NewConsole(out io.Writer, cfg ConsoleConfig) *Console {
	line := lipgloss.NewStyle().Width(cfg.Width)
	frame := lipgloss.NewStyle()
	if !cfg.NoBorder {
		frame = frame.Border(lipgloss.NormalBorder())
	}
	return &Console{
		out:    out,
		width:  cfg.Width,
		song:   line.Bold(true).Foreground(lipgloss.Color(cfg.Color)),
		artist: line,
		frame:  frame,
	}
}

func (c *Console) ShowSelection(song, artist string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := io.WriteString(c.out, c.Render(song, artist)); err != nil {
		zlog.Warn().Err(err).Msg("display: failed to write console panel")
	}
}

// Render returns the panel text. Lines end in "\r\n" so the panel stays
// aligned while the keyboard source holds the terminal in raw mode.
func (c *Console) Render(song, artist string) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		c.song.Render(fit(song, c.width)),
		c.artist.Render(fit(artist, c.width)),
	)
	panel := c.frame.Render(body)
	return strings.ReplaceAll(panel, "\n", "\r\n") + "\r\n"
}

// fit collapses whitespace and cuts s to width terminal columns.
func fit(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	for lipgloss.Width(s) > width {
		r := []rune(s)
		s = string(r[:len(r)-1])
	}
	return s
}
