package oembed

import (
	"regexp"
	"strings"
)

var (
	paragraphPattern = regexp.MustCompile(`(?s)<p[^>]*>(.*?)</p>`)
	anchorPattern    = regexp.MustCompile(`(?s)<a[^>]*>(.*?)</a>`)
	breakPattern     = regexp.MustCompile(`<br\s*/?>`)
	tagPattern       = regexp.MustCompile(`<[^>]+>`)
)

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&mdash;", "—",
	"&nbsp;", " ",
)

// ExtractText reduces an oEmbed HTML fragment to the tweet's plain text:
// first paragraph only, anchors unwrapped to their inner text, line
// breaks preserved as newlines, remaining tags stripped, and the common
// entities decoded.
func ExtractText(html string) string {
	m := paragraphPattern.FindStringSubmatch(html)
	if m == nil {
		return ""
	}

	text := m[1]
	text = anchorPattern.ReplaceAllString(text, "$1")
	text = breakPattern.ReplaceAllString(text, "\n")
	text = tagPattern.ReplaceAllString(text, "")
	text = entityReplacer.Replace(text)

	return strings.TrimSpace(text)
}
