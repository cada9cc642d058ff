package suggest

import (
	"regexp"

	"github.com/osteele/liquid"
)

// Rule pairs a topic pattern with the reply templates that fit it.
// Templates are Liquid so the reply text can reference the tweet author
// without string concatenation in code.
type Rule struct {
	Name      string
	Pattern   *regexp.Regexp
	Templates []*liquid.Template
}

var tplEngine = liquid.NewEngine()

func mustParse(src string) *liquid.Template {
	t, err := tplEngine.ParseString(src)
	if err != nil {
		panic(err)
	}
	return t
}

func mustParseAll(srcs ...string) []*liquid.Template {
	out := make([]*liquid.Template, len(srcs))
	for i, s := range srcs {
		out[i] = mustParse(s)
	}
	return out
}

func newRule(name, pattern string, templates ...string) Rule {
	return Rule{
		Name:      name,
		Pattern:   regexp.MustCompile("(?i)" + pattern),
		Templates: mustParseAll(templates...),
	}
}

// defaultRules is the topical rule table. Order matters only for
// determinism of the output ordering; every matching rule contributes.
var defaultRules = []Rule{
	newRule("shipping", `launch|shipped|deployed|released|live|just built`,
		`congrats on shipping! what's the stack?`,
		`nice. how long did it take to build?`,
		`love seeing {% if author != "" %}@{{ author }}{% else %}people{% endif %} actually shipping. most just talk about it`,
		`ship fast, fix later. this is the way`,
		`what was the hardest part to build?`,
		`this looks great. what's the next feature?`,
	),
	newRule("revenue", `revenue|mrr|arr|\$\d|income|money|profit|paying`,
		`solid. what's the main acquisition channel?`,
		`nice numbers. are you a solo founder?`,
		`what took you the longest - building or finding users?`,
		`love the transparency. more founders should share numbers`,
		`how long from first line of code to first dollar?`,
		`what's your churn rate looking like?`,
	),
	newRule("ai", `\bai\b|gpt|llm|claude|openai|agent|machine learning`,
		`AI is eating software. what model are you using?`,
		`interesting use case. how do you handle hallucinations?`,
		`the best AI products are the ones where users don't even notice it's AI`,
		`what's your cost per API call roughly?`,
		`have you tried running it locally? way cheaper`,
		`the wrapper vs real AI product debate is overblown. if it solves a problem, ship it`,
	),
	newRule("setback", `fail|mistake|lost|broke|down|bug|crash`,
		`happens to everyone. what did you learn from it?`,
		`the best founders fail fast and recover faster`,
		`I've been there. the comeback is always better than the setback`,
		`at least you're building. most people are just watching`,
		`ship the fix and move on. nobody remembers the bugs`,
	),
	newRule("growth", `user|customer|feedback|growth|sign.?up|waitlist`,
		`where are your users coming from mainly?`,
		`talk to your users every day. best growth hack there is`,
		`what's your retention like?`,
		`early users are gold. treat them well`,
		`how did you get your first 10 users?`,
		`organic or paid acquisition?`,
	),
	newRule("indie", `build.?in.?public|indie|solo|bootstrap`,
		`building in public is a superpower. keep going`,
		`the best marketing is showing your work`,
		`solo founders are underrated. you move 10x faster`,
		`bootstrapping > raising money for 99% of products`,
		`love this. day 1 energy is the best energy`,
	),
	newRule("design", `design|ui|ux|landing|page|website`,
		`clean design. what tools did you use?`,
		`looks solid. does it convert well?`,
		`simple > fancy. every time`,
		`the best landing pages are the ones you can read in 5 seconds`,
		`tailwind?`,
	),
	newRule("nomad", `nomad|remote|travel|country|thailand|bali|lisbon`,
		`the nomad life is the best life. where are you based now?`,
		`what's your wifi/productivity setup on the road?`,
		`best place to code is a cafe with good wifi in SEA`,
		`how do you handle timezones with clients/users?`,
	),
	newRule("opensource", `open.?source|github|repo|star`,
		`love open source. what's the repo?`,
		`open source is the ultimate moat. community > everything`,
		`how do you monetize while keeping it open source?`,
		`starring this right now`,
	),
}

// genericTemplates apply to any tweet and guarantee the engine always
// has something to offer.
var genericTemplates = mustParseAll(
	`interesting. tell me more about this`,
	`good stuff{% if author != "" %} @{{ author }}{% endif %}. keep shipping`,
	`this is the kind of content I like seeing on my feed`,
	`bookmarked. following your journey`,
	`respect the hustle. keep building`,
	`how long have you been working on this?`,
	`what's the next milestone?`,
	`love the build in public approach`,
	`this is it. keep going`,
	`saving this for later. solid thread`,
)
