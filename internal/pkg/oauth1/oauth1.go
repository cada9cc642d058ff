// Package oauth1 implements OAuth 1.0a request signing (HMAC-SHA1) for
// the X API user-context endpoints.
package oauth1

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Credentials holds the four values of an OAuth 1.0a user context.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

// Complete reports whether all four credential values are present.
func (c Credentials) Complete() bool {
	return c.ConsumerKey != "" && c.ConsumerSecret != "" &&
		c.AccessToken != "" && c.AccessSecret != ""
}

// Signer signs outgoing requests. The nonce and clock functions are
// replaceable so tests can assert exact header values.
type Signer struct {
	creds Credentials
	nonce func() string
	now   func() time.Time
}

// NewSigner creates a Signer for the given credentials.
func NewSigner(creds Credentials) *Signer {
	return &Signer{
		creds: creds,
		nonce: randomNonce,
		now:   time.Now,
	}
}

// NewSignerForTest creates a Signer with fixed nonce and time sources.
func NewSignerForTest(creds Credentials, nonce string, now time.Time) *Signer {
	return &Signer{
		creds: creds,
		nonce: func() string { return nonce },
		now:   func() time.Time { return now },
	}
}

// Sign sets the Authorization header on req. Query parameters are
// included in the signature base string; JSON request bodies are not,
// per RFC 5849 §3.4.1.3.1.
func (s *Signer) Sign(req *http.Request) {
	oauthParams := map[string]string{
		"oauth_consumer_key":     s.creds.ConsumerKey,
		"oauth_nonce":            s.nonce(),
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        fmt.Sprintf("%d", s.now().Unix()),
		"oauth_token":            s.creds.AccessToken,
		"oauth_version":          "1.0",
	}

	oauthParams["oauth_signature"] = s.signature(req, oauthParams)

	keys := make([]string, 0, len(oauthParams))
	for k := range oauthParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf(`%s="%s"`, k, encode(oauthParams[k])))
	}
	req.Header.Set("Authorization", "OAuth "+strings.Join(parts, ", "))
}

func (s *Signer) signature(req *http.Request, oauthParams map[string]string) string {
	// Collect oauth params and query params into one sorted, encoded list.
	params := make([][2]string, 0, len(oauthParams)+8)
	for k, v := range oauthParams {
		params = append(params, [2]string{encode(k), encode(v)})
	}
	for k, vs := range req.URL.Query() {
		for _, v := range vs {
			params = append(params, [2]string{encode(k), encode(v)})
		}
	}
	sort.Slice(params, func(i, j int) bool {
		if params[i][0] != params[j][0] {
			return params[i][0] < params[j][0]
		}
		return params[i][1] < params[j][1]
	})

	pairs := make([]string, len(params))
	for i, p := range params {
		pairs[i] = p[0] + "=" + p[1]
	}

	baseURL := &url.URL{
		Scheme: req.URL.Scheme,
		Host:   req.URL.Host,
		Path:   req.URL.Path,
	}
	base := strings.ToUpper(req.Method) + "&" +
		encode(baseURL.String()) + "&" +
		encode(strings.Join(pairs, "&"))

	signingKey := encode(s.creds.ConsumerSecret) + "&" + encode(s.creds.AccessSecret)
	mac := hmac.New(sha1.New, []byte(signingKey))
	mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// encode percent-encodes per RFC 3986 as required by RFC 5849.
func encode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') || c == '-' || c == '.' || c == '_' || c == '~' {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

func randomNonce() string {
	buf := make([]byte, 16)
	rand.Read(buf)
	return strings.TrimRight(base64.URLEncoding.EncodeToString(buf), "=")
}
