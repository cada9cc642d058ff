// Package suggest generates candidate replies for a tweet from a fixed
// rule table. Rules match on topic keywords; a generic pool covers
// everything else. Output is randomized per call but capped and
// deduplicated so the reviewer sees at most four distinct options.
package suggest

import (
	"math/rand"
	"sync"
	"time"

	"github.com/osteele/liquid"
)

const (
	perRuleSamples = 2
	genericSamples = 2
	maxSuggestions = 4
)

// Engine holds the rule table and the randomness source used for
// sampling. Safe for concurrent use; rand.Rand is not, so the mutex
// covers every draw.
type Engine struct {
	rules    []Rule
	generics []*liquid.Template

	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine creates an engine over the default rule table.
func NewEngine() *Engine {
	return NewEngineWithSeed(time.Now().UnixNano())
}

// NewEngineWithSeed creates an engine with a fixed seed. Used by tests
// that need deterministic sampling.
func NewEngineWithSeed(seed int64) *Engine {
	return &Engine{
		rules:    defaultRules,
		generics: genericTemplates,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Generate returns one to four distinct reply suggestions for a tweet.
// Every rule whose pattern matches contributes up to two randomly
// sampled replies, then two generics are appended, then the combined
// list is deduplicated preserving order and truncated to four.
func (e *Engine) Generate(tweetText, author string) []string {
	bindings := liquid.Bindings{
		"text":   tweetText,
		"author": author,
	}

	var out []string
	for _, rule := range e.rules {
		if !rule.Pattern.MatchString(tweetText) {
			continue
		}
		out = append(out, e.sample(rule.Templates, perRuleSamples, bindings)...)
	}
	out = append(out, e.sample(e.generics, genericSamples, bindings)...)

	return dedupe(out, maxSuggestions)
}

// sample renders n templates picked without replacement.
func (e *Engine) sample(templates []*liquid.Template, n int, bindings liquid.Bindings) []string {
	e.mu.Lock()
	idx := e.rng.Perm(len(templates))
	e.mu.Unlock()
	if n > len(idx) {
		n = len(idx)
	}

	out := make([]string, 0, n)
	for _, i := range idx[:n] {
		text, err := templates[i].RenderString(bindings)
		if err != nil {
			continue
		}
		out = append(out, text)
	}
	return out
}

// dedupe removes repeated suggestions keeping the first occurrence, then
// truncates to max.
func dedupe(in []string, max int) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, max)
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
		if len(out) == max {
			break
		}
	}
	return out
}
