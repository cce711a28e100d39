package timeline

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_CommaSeparatedList(t *testing.T) {
	markers := slices.Collect(Extract("0:00 Intro,1:30 Overview,03:45 Topic 1,05:10 Topic 2,07:25 Conclusion"))

	require.Len(t, markers, 5)
	assert.Equal(t, []Marker{
		{Title: "Intro", Time: 0},
		{Title: "Overview", Time: 90},
		{Title: "Topic 1", Time: 225},
		{Title: "Topic 2", Time: 310},
		{Title: "Conclusion", Time: 445},
	}, markers)
}

func TestExtract_Conventions(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Marker
	}{
		{
			name: "title first",
			text: "Intro: 0:00\nDeep dive: 1:02:03",
			want: []Marker{{Title: "Intro", Time: 0}, {Title: "Deep dive", Time: 3723}},
		},
		{
			name: "title first with dash",
			text: "Opening - 0:00\nPart 2 - 12:30",
			want: []Marker{{Title: "Opening", Time: 0}, {Title: "Part 2", Time: 750}},
		},
		{
			name: "bullets and dashes",
			text: "• 0:00 Intro\n- 01:30 - Overview\n* 2:00 Details",
			want: []Marker{{Title: "Intro", Time: 0}, {Title: "Overview", Time: 90}, {Title: "Details", Time: 120}},
		},
		{
			name: "parenthesized time",
			text: "(0:00) Welcome\n(2:00) Q&A",
			want: []Marker{{Title: "Welcome", Time: 0}, {Title: "Q&A", Time: 120}},
		},
		{
			name: "semicolons",
			text: "0:00 Start; 2:30 Middle; 5:00 End",
			want: []Marker{{Title: "Start", Time: 0}, {Title: "Middle", Time: 150}, {Title: "End", Time: 300}},
		},
		{
			name: "title first on one line",
			text: "Intro: 0:00, Setup: 1:15",
			want: []Marker{{Title: "Intro", Time: 0}, {Title: "Setup", Time: 75}},
		},
		{
			name: "commas inside titles are kept",
			text: "0:00 Hello, world\n1:00 Bye",
			want: []Marker{{Title: "Hello, world", Time: 0}, {Title: "Bye", Time: 60}},
		},
		{
			name: "surrounding prose is ignored",
			text: "Thanks for watching!\n\nChapters:\n0:00 Intro\n4:20 Recipe\n\nFollow me elsewhere.",
			want: []Marker{{Title: "Intro", Time: 0}, {Title: "Recipe", Time: 260}},
		},
		{
			name: "invalid seconds are ignored",
			text: "0:00 Intro\n1:75 Broken\n2:00 Next",
			want: []Marker{{Title: "Intro", Time: 0}, {Title: "Next", Time: 120}},
		},
		{
			name: "times must increase",
			text: "0:00 A\n5:00 B\n3:00 C\n6:00 D",
			want: []Marker{{Title: "A", Time: 0}, {Title: "B", Time: 300}, {Title: "D", Time: 360}},
		},
		{
			name: "empty titles are skipped",
			text: "0:00 -\n1:00 Real",
			want: []Marker{{Title: "Real", Time: 60}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slices.Collect(Extract(tt.text)))
		})
	}
}

func TestExtract_NoChapters(t *testing.T) {
	texts := []string{
		"",
		"As written in John 3:16 and Psalm 23:4, we see a pattern.",
		"Luke 2:10, John 3:16",
		"Just a description with no timestamps at all.",
	}

	for _, text := range texts {
		assert.Empty(t, slices.Collect(Extract(text)), "text: %q", text)
	}
}

func TestExtract_NormalizesTitles(t *testing.T) {
	markers := slices.Collect(Extract("0:00 Cafe\u0301   tour"))

	require.Len(t, markers, 1)
	assert.Equal(t, "Caf\u00e9 tour", markers[0].Title)
}

func TestExtract_StopsEarly(t *testing.T) {
	var got []Marker
	for m := range Extract("0:00 A\n1:00 B\n2:00 C") {
		got = append(got, m)
		if len(got) == 2 {
			break
		}
	}
	assert.Len(t, got, 2)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"0:00", 0, true},
		{"1:30", 90, true},
		{"03:45", 225, true},
		{"90:00", 5400, true},
		{"1:02:03", 3723, true},
		{"01:02:03", 3723, true},
		{"1:60", 0, false},
		{"1:60:00", 0, false},
		{"12", 0, false},
		{"a:bc", 0, false},
		{"1:2:3:4", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestExtractText(t *testing.T) {
	t.Run("plain text passes through", func(t *testing.T) {
		text := "0:00 Intro\n1:30 Overview"
		assert.Equal(t, text, ExtractText(text))
	})

	t.Run("html becomes lines", func(t *testing.T) {
		html := `<p>0:00 Intro</p><p><a href="https://example.com/watch?t=90">1:30</a> Overview</p>`

		markers := slices.Collect(Extract(ExtractText(html)))

		assert.Equal(t, []Marker{{Title: "Intro", Time: 0}, {Title: "Overview", Time: 90}}, markers)
	})
}

func TestBuild(t *testing.T) {
	t.Run("chains ends to next start", func(t *testing.T) {
		segments := Build(Extract("0:00 Intro\n1:30 Overview\n3:00 Outro"))

		require.Len(t, segments, 3)
		assert.Equal(t, Known(90), segments[0].End)
		assert.Equal(t, Known(180), segments[1].End)
		assert.False(t, segments[2].End.IsKnown())
		for _, s := range segments {
			assert.Equal(t, CategoryContent, s.Category)
			assert.True(t, s.Active)
		}
	})

	t.Run("single marker is open ended", func(t *testing.T) {
		segments := Build(Extract("0:42 Only"))

		require.Len(t, segments, 1)
		assert.InDelta(t, 42.0, segments[0].Start, 1e-9)
		assert.Equal(t, Pending(), segments[0].End)
	})

	t.Run("no markers", func(t *testing.T) {
		assert.Empty(t, Build(Extract("nothing here")))
	})
}
