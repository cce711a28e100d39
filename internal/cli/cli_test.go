package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/chapter-timeline/internal/timeline"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ENGINE_TOLERANCE", "")
	t.Setenv("LOG_LEVEL", "")

	var out, errOut bytes.Buffer
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)

	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func decodeSegments(t *testing.T, out string) []timeline.Segment {
	t.Helper()
	var segments []timeline.Segment
	require.NoError(t, json.Unmarshal([]byte(out), &segments), out)
	return segments
}

const description = "Chapters\n0:00 Intro\n1:30 Main topic\n10:00 Outro\n"

func TestExtract(t *testing.T) {
	path := writeFile(t, "desc.txt", description)

	out, err := execute(t, "", "extract", path)
	require.NoError(t, err)

	segments := decodeSegments(t, out)
	require.Len(t, segments, 3)
	assert.Equal(t, "Main topic", segments[1].Title)
	assert.False(t, segments[2].End.IsKnown())

	out, err = execute(t, "", "extract", path, "--duration", "700")
	require.NoError(t, err)
	segments = decodeSegments(t, out)
	assert.Equal(t, timeline.Known(700), segments[2].End)
}

func TestExtract_StdinAndTextFormat(t *testing.T) {
	out, err := execute(t, description, "extract", "-", "--format", "text")
	require.NoError(t, err)

	assert.Contains(t, out, "START")
	assert.Contains(t, out, "1:30")
	assert.Contains(t, out, "Main topic")
	assert.Contains(t, out, "open")
}

func TestMerge(t *testing.T) {
	desc := writeFile(t, "desc.txt", description)
	sponsors := writeFile(t, "sponsors.json", `{"vid": [{"start": 30, "end": 60, "category": "sponsor"}]}`)

	out, err := execute(t, "", "merge", desc, "--sponsors", sponsors, "--video", "vid", "--duration", "900")
	require.NoError(t, err)

	segments := decodeSegments(t, out)
	require.Len(t, segments, 5)
	assert.Equal(t, timeline.CategorySponsor, segments[1].Category)
	assert.False(t, segments[1].Active)
	assert.Equal(t, timeline.Known(900), segments[4].End)
}

func TestMerge_NoChaptersGenerates(t *testing.T) {
	desc := writeFile(t, "desc.txt", "Just a vlog today.")
	sponsors := writeFile(t, "sponsors.json", `[{"start": 10, "end": 20, "category": "sponsor"}]`)

	out, err := execute(t, "", "merge", desc, "--sponsors", sponsors, "--duration", "60")
	require.NoError(t, err)

	segments := decodeSegments(t, out)
	require.Len(t, segments, 3)
	assert.Equal(t, timeline.CategoryGenerated, segments[0].Category)
	assert.Equal(t, timeline.CategoryGenerated, segments[2].Category)
}

func TestMerge_MissingVideoHasNoSponsors(t *testing.T) {
	desc := writeFile(t, "desc.txt", description)
	sponsors := writeFile(t, "sponsors.json", `{"other": [{"start": 30, "end": 60}]}`)

	out, err := execute(t, "", "merge", desc, "--sponsors", sponsors, "--video", "vid")
	require.NoError(t, err)

	for _, s := range decodeSegments(t, out) {
		assert.Equal(t, timeline.CategoryContent, s.Category)
	}
}

func TestGenerate(t *testing.T) {
	sponsors := writeFile(t, "sponsors.json", `[{"start": 10, "end": 20, "category": "sponsor"}]`)

	out, err := execute(t, "", "generate", "--sponsors", sponsors, "--duration", "60")
	require.NoError(t, err)

	segments := decodeSegments(t, out)
	require.Len(t, segments, 3)
	assert.Equal(t, timeline.Known(60), segments[2].End)

	_, err = execute(t, "", "generate", "--sponsors", sponsors)
	assert.Error(t, err, "duration is required")
}

func TestComplete(t *testing.T) {
	path := writeFile(t, "timeline.json", `[
		{"title": "A", "start": 0, "end": 100, "category": "content", "active": true},
		{"title": "B", "start": 100, "end": null, "category": "content", "active": true}
	]`)

	out, err := execute(t, "", "complete", path, "--duration", "250")
	require.NoError(t, err)

	segments := decodeSegments(t, out)
	require.Len(t, segments, 2)
	assert.Equal(t, timeline.Known(250), segments[1].End)

	late := writeFile(t, "late.json", `[
		{"title": "Late", "start": 40, "end": 50, "category": "content", "active": true}
	]`)
	out, err = execute(t, "", "complete", late, "--duration", "30")
	require.NoError(t, err)
	assert.Empty(t, decodeSegments(t, out))

	_, err = execute(t, "", "complete", path, "--duration", "-3")
	assert.ErrorContains(t, err, "duration must be positive")
}

func TestRootFlagsValidated(t *testing.T) {
	path := writeFile(t, "desc.txt", description)

	_, err := execute(t, "", "extract", path, "--tolerance", "0")
	assert.ErrorContains(t, err, "tolerance")

	_, err = execute(t, "", "extract", path, "--format", "yaml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestWatchRejectsStdin(t *testing.T) {
	_, err := execute(t, description, "extract", "-", "--watch")
	assert.ErrorContains(t, err, "needs a file")
}

func TestWatchAndRun_ReRunsOnChange(t *testing.T) {
	path := writeFile(t, "desc.txt", "0:00 Intro\n")

	runs := make(chan struct{}, 8)
	run := func() error {
		runs <- struct{}{}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := &cobra.Command{}
	cmd.SetErr(io.Discard)

	done := make(chan error, 1)
	go func() { done <- watchAndRun(ctx, cmd, path, run) }()

	waitRun := func() {
		t.Helper()
		select {
		case <-runs:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for run")
		}
	}

	waitRun() // initial run
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("0:00 Intro\n2:00 More\n"), 0o600))
	waitRun()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch loop did not stop")
	}
}

func TestClock(t *testing.T) {
	assert.Equal(t, "0:00", clock(0))
	assert.Equal(t, "1:30", clock(90))
	assert.Equal(t, "1:02:03", clock(3723))
	assert.Equal(t, "0:10.500", clock(10.5))
}
