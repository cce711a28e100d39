package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/listenupapp/chapter-timeline/internal/timeline"
)

const (
	formatJSON = "json"
	formatText = "text"
)

// render writes segments as indented JSON or as an aligned table.
func render(w io.Writer, format string, segments []timeline.Segment) error {
	if segments == nil {
		segments = []timeline.Segment{}
	}

	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(segments)
	}

	if len(segments) == 0 {
		_, err := fmt.Fprintln(w, "no chapters")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "START\tEND\tCATEGORY\tACTIVE\tTITLE")
	for _, s := range segments {
		end := "open"
		if v, ok := s.End.Value(); ok {
			end = clock(v)
		}
		title := s.Title
		if title == "" {
			title = s.Label
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", clock(s.Start), end, s.Category, s.Active, title)
	}
	return tw.Flush()
}

// clock formats seconds as m:ss or h:mm:ss, keeping fractions.
func clock(seconds float64) string {
	whole := math.Floor(seconds)
	frac := seconds - whole
	total := int64(whole)
	h, m, sec := total/3600, (total%3600)/60, total%60

	var b strings.Builder
	if h > 0 {
		fmt.Fprintf(&b, "%d:%02d:%02d", h, m, sec)
	} else {
		fmt.Fprintf(&b, "%d:%02d", m, sec)
	}
	if frac > 1e-3 {
		b.WriteString(strings.TrimPrefix(strconv.FormatFloat(frac, 'f', 3, 64), "0"))
	}
	return b.String()
}

// readInput reads a file, or stdin for "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return def
	}
	return v
}
