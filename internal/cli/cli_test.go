package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	goruntime "runtime"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/abacus/pkg/display"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() RunOptions {
	return RunOptions{
		Quiet:       true,
		TermOptions: []termenv.OutputOption{termenv.WithProfile(termenv.Ascii)},
	}
}

func TestDecodeTerminalKeys(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"digits and operators", "12+3", []string{"1", "2", "+", "3"}},
		{"enter variants", "\r\n", []string{"Enter", "Enter"}},
		{"backspace variants", "\x7f\x08", []string{"Backspace", "Backspace"}},
		{"bare escape", "\x1b", []string{"Escape"}},
		{"delete key", "\x1b[3~", []string{"Delete"}},
		{"arrow keys ignored", "\x1b[A1\x1bOB", []string{"1"}},
		{"escape then key", "\x1bc", []string{"Escape", "c"}},
		{"unicode glyphs", "×÷", []string{"×", "÷"}},
		{"quit", "1\x03", []string{"1", keyQuit}},
		{"control bytes dropped", "\x01\x021", []string{"1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeTerminalKeys([]byte(tt.in)))
		})
	}
}

func TestSplitKeys(t *testing.T) {
	keys, err := splitKeys("12 {Backspace}× 3{Enter}")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "Backspace", "×", "3", "Enter"}, keys)

	_, err = splitKeys("1{Enter")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = splitKeys("{}")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRunHeadless_Text(t *testing.T) {
	in := strings.NewReader("# worked example\n2+3*4=\n\n5/0=\n1?\n7{Backspace}\n")
	var out bytes.Buffer

	require.NoError(t, RunHeadless(context.Background(), in, &out, testOptions()))

	got := out.String()
	assert.Contains(t, got, "│             20 │")
	assert.Contains(t, got, "! Cannot divide by zero!")
	assert.Contains(t, got, `error: unknown key: "?"`)
	assert.Equal(t, 3, strings.Count(got, "┌"), "rejected lines print no display")
	assert.NotContains(t, got, "worked example")
}

func TestRunHeadless_JSON(t *testing.T) {
	in := strings.NewReader("7*6=\n+1\n12{bogus}\n%\n")
	var out bytes.Buffer
	opts := testOptions()
	opts.JSON = true
	opts.Glyphs = display.ASCIIGlyphs

	require.NoError(t, RunHeadless(context.Background(), in, &out, opts))

	var frames []Frame
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var f Frame
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &f))
		frames = append(frames, f)
	}
	require.Len(t, frames, 4)

	assert.Equal(t, "42", frames[0].State.CurrentOperand)
	assert.Equal(t, domain.OutcomeComputed, frames[0].Outcome)

	assert.Equal(t, "42 +", frames[1].Display.Previous)
	assert.Equal(t, "1", frames[1].Display.Current)

	assert.Contains(t, frames[2].Error, "unknown key")
	assert.Equal(t, "1", frames[2].State.CurrentOperand, "rejected line keeps the state")

	// 42 + 1% = 42 * 1 / 100
	assert.Equal(t, "0.42", frames[3].State.CurrentOperand)
}

func TestRunHeadless_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	assert.NoError(t, RunHeadless(ctx, blockingReader{}, &out, testOptions()))
}

// lineReader hands out one line per Read call.
type lineReader struct {
	lines []string
}

func (r *lineReader) Read(p []byte) (int, error) {
	if len(r.lines) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.lines[0])
	r.lines = r.lines[1:]
	return n, nil
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("closed pipe")
}

func TestRunHeadless_StopsReaderOnError(t *testing.T) {
	before := goruntime.NumGoroutine()

	opts := testOptions()
	opts.JSON = true
	in := &lineReader{lines: []string{"1\n", "2\n", "3\n"}}
	err := RunHeadless(context.Background(), in, failingWriter{}, opts)
	require.ErrorContains(t, err, "closed pipe")

	assert.Eventually(t, func() bool {
		return goruntime.NumGoroutine() <= before
	}, time.Second, 10*time.Millisecond, "line scanner still running")
}

func TestInteract_StopsReaderOnQuit(t *testing.T) {
	before := goruntime.NumGoroutine()

	in := &lineReader{lines: []string{"1", "q", "2", "3"}}
	var out bytes.Buffer
	require.NoError(t, interact(context.Background(), in, &out, testOptions(), false))

	assert.Eventually(t, func() bool {
		return goruntime.NumGoroutine() <= before
	}, time.Second, 10*time.Millisecond, "key reader still running")
}

type blockingReader struct{}

func (blockingReader) Read(p []byte) (int, error) {
	select {}
}

func TestInteract(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("12+3\r9/0\r\x03")

	require.NoError(t, interact(context.Background(), in, &out, testOptions(), true))

	got := out.String()
	assert.Contains(t, got, "│             15 │\r\n")
	assert.Contains(t, got, "! Cannot divide by zero!\r\n")
	assert.Contains(t, got, "│           12 + │")
}

func TestInteract_QuitAndUnboundKeys(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("4?zq5")

	require.NoError(t, interact(context.Background(), in, &out, testOptions(), false))

	got := out.String()
	assert.Contains(t, got, "│              4 │\n")
	assert.NotContains(t, got, "45")
}

func TestInteract_Banner(t *testing.T) {
	var out bytes.Buffer
	opts := testOptions()
	opts.Quiet = false

	require.NoError(t, interact(context.Background(), strings.NewReader(""), &out, opts, true))
	assert.Contains(t, out.String(), `\__,_|`)
	assert.NotContains(t, strings.ReplaceAll(out.String(), "\r\n", ""), "\n")
}

func TestExecute_FallsBackToHeadless(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Execute(context.Background(), strings.NewReader("9\n"), &out, testOptions()))
	assert.Contains(t, out.String(), "│              9 │\n")
}

func TestSignalContext_CancelledElsewhere(t *testing.T) {
	sc := NewSignalContext(context.Background())
	sc.Cancel()
	<-sc.Done()
	assert.Nil(t, sc.Signal())
}
