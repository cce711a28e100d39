package timeline

import (
	"iter"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// matcher recognizes one chapter-list convention in a single entry.
type matcher func(entry string) (Marker, bool)

const timePattern = `((?:\d{1,2}:)?\d{1,2}:\d{2})`

var (
	// "0:00 Intro", "• 01:30 - Overview", "(1:02:03) Finale"
	timeFirstPattern = regexp.MustCompile(`^[\s•·*\-–—]*\(?` + timePattern + `\)?(?:\s*[-–—:|.]+\s*|\s+)(.+)$`)

	// "Intro: 0:00", "Part 2 - 1:02:03". The separator and the space after it
	// keep citations such as "John 3:16" out.
	titleFirstPattern = regexp.MustCompile(`^[\s•·*\-–—]*(.+?)\s*[:\-–—|]\s+\(?` + timePattern + `\)?\s*$`)

	// A "," or ";" directly in front of a timestamp starts a new entry.
	sepBeforeTime = regexp.MustCompile(`[,;]\s*(?:[•·*\-–]\s*)?\(?\d{1,2}:\d{2}`)
	// A "," or ";" directly after a timestamp ends an entry.
	sepAfterTime = regexp.MustCompile(`\d:\d{2}\)?\s*[,;]`)
	anyTime      = regexp.MustCompile(`\d{1,2}:\d{2}`)
)

// matchers are tried in order; the first hit wins.
var matchers = []matcher{
	matchTimeFirst,
	matchTitleFirst,
}

// Extract lazily yields the chapter markers found in text, in document order.
// Text without any recognizable chapter list yields nothing.
func Extract(text string) iter.Seq[Marker] {
	return func(yield func(Marker) bool) {
		last := -1.0
		for line := range strings.Lines(text) {
			for _, entry := range splitEntries(strings.TrimRight(line, "\r\n")) {
				m, ok := matchEntry(entry)
				if !ok {
					continue
				}
				// Chapter lists only move forward; anything else is noise
				// such as a quoted timestamp further down.
				if m.Time <= last {
					continue
				}
				last = m.Time
				if !yield(m) {
					return
				}
			}
		}
	}
}

func matchEntry(entry string) (Marker, bool) {
	if strings.TrimSpace(entry) == "" {
		return Marker{}, false
	}
	for _, match := range matchers {
		if m, ok := match(entry); ok {
			return m, true
		}
	}
	return Marker{}, false
}

func matchTimeFirst(entry string) (Marker, bool) {
	groups := timeFirstPattern.FindStringSubmatch(entry)
	if groups == nil {
		return Marker{}, false
	}
	return newMarker(groups[2], groups[1])
}

func matchTitleFirst(entry string) (Marker, bool) {
	groups := titleFirstPattern.FindStringSubmatch(entry)
	if groups == nil {
		return Marker{}, false
	}
	return newMarker(groups[1], groups[2])
}

func newMarker(rawTitle, rawTime string) (Marker, bool) {
	seconds, ok := ParseTimestamp(rawTime)
	if !ok {
		return Marker{}, false
	}
	title := cleanTitle(rawTitle)
	if title == "" {
		return Marker{}, false
	}
	return Marker{Title: title, Time: seconds}, true
}

// ParseTimestamp converts "H:MM:SS" or "M:SS" to seconds as
// ((hours*60)+minutes)*60+seconds.
func ParseTimestamp(s string) (float64, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}

	values := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return 0, false
		}
		values[i] = v
	}

	var hours, minutes, seconds int
	if len(values) == 3 {
		hours, minutes, seconds = values[0], values[1], values[2]
		if minutes >= 60 {
			return 0, false
		}
	} else {
		minutes, seconds = values[0], values[1]
	}
	if seconds >= 60 {
		return 0, false
	}

	return float64((hours*60+minutes)*60 + seconds), true
}

func cleanTitle(s string) string {
	s = strings.Trim(s, " \t-–—:|•·*")
	s = strings.Join(strings.Fields(s), " ")
	return norm.NFC.String(s)
}

// splitEntries breaks one line into chapter entries at "," or ";" separators
// that sit next to a timestamp. Other commas belong to titles.
func splitEntries(line string) []string {
	var cuts []int
	for _, m := range sepBeforeTime.FindAllStringIndex(line, -1) {
		cuts = append(cuts, m[0])
	}
	for _, m := range sepAfterTime.FindAllStringIndex(line, -1) {
		cut := m[1] - 1
		if anyTime.MatchString(line[cut+1:]) {
			cuts = append(cuts, cut)
		}
	}
	if len(cuts) == 0 {
		return []string{line}
	}

	sort.Ints(cuts)
	entries := make([]string, 0, len(cuts)+1)
	prev := 0
	for _, cut := range cuts {
		if cut < prev {
			continue
		}
		entries = append(entries, line[prev:cut])
		prev = cut + 1
	}
	return append(entries, line[prev:])
}
