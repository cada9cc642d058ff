package oembed

import (
	"regexp"
	"strings"
)

var (
	tweetIDPattern = regexp.MustCompile(`status/(\d+)`)
	handlePattern  = regexp.MustCompile(`(?:x|twitter)\.com/(\w+)`)
)

// NormalizeURL rewrites the legacy domain to the canonical one and
// strips the query string and fragment.
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if strings.Contains(u, "twitter.com") {
		u = strings.Replace(u, "twitter.com", "x.com", 1)
	}
	if i := strings.IndexByte(u, '?'); i >= 0 {
		u = u[:i]
	}
	if i := strings.IndexByte(u, '#'); i >= 0 {
		u = u[:i]
	}
	return u
}

// ExtractTweetID pulls the numeric tweet id out of a tweet URL. Empty
// string means the URL does not address a single tweet.
func ExtractTweetID(u string) string {
	m := tweetIDPattern.FindStringSubmatch(u)
	if m == nil {
		return ""
	}
	return m[1]
}

// IsTweetURL reports whether the string addresses a single tweet.
func IsTweetURL(u string) bool {
	return tweetIDPattern.MatchString(u)
}

// extractHandle pulls the account handle out of an author profile URL.
func extractHandle(authorURL string) string {
	m := handlePattern.FindStringSubmatch(authorURL)
	if m == nil {
		return ""
	}
	return m[1]
}
