package input

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinput "github.com/osa030/buttonbox/internal/app/input"
)

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return base.Add(time.Duration(ms) * time.Millisecond)
}

func TestKeyboard_KeyHoldsButtonLow(t *testing.T) {
	pr, pw := io.Pipe()
	k := newKeyboard(pr, 250*time.Millisecond, func() time.Time { return base })
	defer pw.Close()

	_, err := pw.Write([]byte("n"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return k.Levels(at(0))[appinput.ButtonNext] == appinput.Low
	}, time.Second, 5*time.Millisecond)

	levels := k.Levels(at(249))
	assert.Equal(t, appinput.Low, levels[appinput.ButtonNext])
	assert.Equal(t, appinput.High, levels[appinput.ButtonPrev])
	assert.Equal(t, appinput.High, levels[appinput.ButtonPlay])

	assert.Equal(t, appinput.Released(), k.Levels(at(250)))
}

func TestKeyboard_Keymap(t *testing.T) {
	tests := []struct {
		key  string
		want appinput.Button
	}{
		{key: "p", want: appinput.ButtonPrev},
		{key: "a", want: appinput.ButtonPrev},
		{key: " ", want: appinput.ButtonPlay},
		{key: "n", want: appinput.ButtonNext},
		{key: "d", want: appinput.ButtonNext},
	}

	for _, tt := range tests {
		t.Run(tt.want.String()+"/"+tt.key, func(t *testing.T) {
			k := newKeyboard(strings.NewReader(tt.key), time.Second, func() time.Time { return base })
			require.Eventually(t, func() bool {
				return k.Levels(at(10))[tt.want] == appinput.Low
			}, time.Second, 5*time.Millisecond)
		})
	}
}

func TestKeyboard_UnknownKeyIgnored(t *testing.T) {
	k := newKeyboard(strings.NewReader("xyz\r\n"), time.Second, func() time.Time { return base })
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, appinput.Released(), k.Levels(at(10)))
	select {
	case <-k.Done():
		t.Fatal("unexpected quit")
	default:
	}
}

func TestKeyboard_Quit(t *testing.T) {
	for _, key := range []string{"q", "\x03"} {
		k := newKeyboard(strings.NewReader(key), time.Second, time.Now)
		select {
		case <-k.Done():
		case <-time.After(time.Second):
			t.Fatalf("quit not signalled for %q", key)
		}
		assert.NoError(t, k.Close())
	}
}

func TestScript_Levels(t *testing.T) {
	s := NewScript([]Step{
		{At: 500 * time.Millisecond, Button: appinput.ButtonNext, Hold: 300 * time.Millisecond},
		{At: 0, Button: appinput.ButtonPlay, Hold: 300 * time.Millisecond},
	}, 0)

	tests := []struct {
		ms  int
		low []appinput.Button
	}{
		{ms: 0, low: []appinput.Button{appinput.ButtonPlay}},
		{ms: 299, low: []appinput.Button{appinput.ButtonPlay}},
		{ms: 300},
		{ms: 500, low: []appinput.Button{appinput.ButtonNext}},
		{ms: 800},
	}

	for _, tt := range tests {
		want := appinput.Released()
		for _, b := range tt.low {
			want[b] = appinput.Low
		}
		assert.Equal(t, want, s.Levels(at(tt.ms)), "at %dms", tt.ms)
	}
	assert.Equal(t, 800*time.Millisecond, s.End())
}

func TestScript_ExitAfter(t *testing.T) {
	s := NewScript([]Step{{At: 0, Button: appinput.ButtonPlay, Hold: 100 * time.Millisecond}}, time.Second)

	s.Levels(at(0))
	s.Levels(at(1099))
	select {
	case <-s.Done():
		t.Fatal("done too early")
	default:
	}

	s.Levels(at(1100))
	select {
	case <-s.Done():
	default:
		t.Fatal("done not signalled")
	}

	// Without exitAfter the script never finishes.
	forever := NewScript(nil, 0)
	forever.Levels(at(0))
	forever.Levels(at(60_000))
	select {
	case <-forever.Done():
		t.Fatal("unexpected done")
	default:
	}
}

func TestScript_DrivesPanel(t *testing.T) {
	s := NewScript([]Step{{At: 0, Button: appinput.ButtonNext, Hold: 250 * time.Millisecond}}, 0)
	p := appinput.NewPanel(appinput.DefaultWindow)

	var pressed []appinput.Button
	for ms := 0; ms <= 600; ms += 10 {
		pressed = append(pressed, p.Update(s.Levels(at(ms)), at(ms))...)
	}
	assert.Equal(t, []appinput.Button{appinput.ButtonNext}, pressed)
}

func TestNew(t *testing.T) {
	src, err := New(TypeScript, Options{})
	require.NoError(t, err)
	assert.IsType(t, &Script{}, src)

	_, err = New("gpio", Options{})
	assert.Error(t, err)
}
