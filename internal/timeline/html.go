package timeline

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

var (
	htmlTagPattern        = regexp.MustCompile(`(?i)<(p|br|div|span|a|b|i|strong|em|ul|ol|li|h[1-6])[\s/>]`)
	markdownLinkPattern   = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	markdownEscapePattern = regexp.MustCompile(`\\([\\\-*_.#+!\[\]()|])`)
)

// ExtractText prepares a description for Extract. HTML descriptions are
// converted to markdown so block elements become lines, and links around
// timestamps are reduced to their text. Plain text is returned unchanged.
func ExtractText(description string) string {
	if !containsHTML(description) {
		return description
	}

	md, err := htmltomarkdown.ConvertString(description)
	if err != nil {
		// Not worth failing over; the raw text may still hold a chapter list.
		return description
	}

	md = markdownLinkPattern.ReplaceAllString(md, "$1")
	md = markdownEscapePattern.ReplaceAllString(md, "$1")
	return strings.TrimSpace(md)
}

func containsHTML(s string) bool {
	return htmlTagPattern.MatchString(s)
}
