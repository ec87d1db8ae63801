package analysis

import (
	"regexp"
	"strings"

	"github.com/felixgeelhaar/planforge/pkg/planforge/types"
)

// featureRule binds a feature tag to its keyword list. Multi-word keywords
// match by substring; single-word keywords match on a word boundary so "app"
// never fires inside "webapplication".
type featureRule struct {
	tag      types.Feature
	keywords []string
}

// featureRules is the fixed detection catalog, evaluated in order. The order
// only determines detection sequence; tags form a set.
var featureRules = []featureRule{
	{types.FeatureAuth, []string{
		"authentication", "authorization", "login", "log in", "sign in",
		"signup", "sign up", "user account", "jwt", "oauth", "auth",
	}},
	{types.FeatureDatabase, []string{
		"database", "postgres", "postgresql", "mysql", "mongodb", "sqlite",
		"data model", "schema", "persistence", "crud", "db", "sql", "storage",
	}},
	{types.FeatureRealtime, []string{
		"realtime", "real-time", "real time", "websocket", "websockets",
		"live updates", "chat", "socket",
	}},
	// The api tag requires an explicit server-API phrase. The bare substring
	// "api" must never trigger it, or "context api" would misclassify.
	{types.FeatureAPI, []string{
		"rest api", "backend api", "server api", "rest endpoint",
	}},
	{types.FeatureFastAPI, []string{
		"fastapi", "fast api", "python api", "uvicorn", "pydantic",
	}},
	{types.FeatureFrontend, []string{
		"frontend", "front-end", "front end", "react", "vue", "angular",
		"user interface", "context api", "state management", "spa", "ui",
	}},
	{types.FeatureTesting, []string{
		"testing", "unit test", "unit tests", "integration test",
		"test coverage", "tdd", "e2e", "test", "tests",
	}},
	{types.FeaturePayment, []string{
		"payment", "payments", "stripe", "billing", "subscription", "checkout",
	}},
	{types.FeatureEmail, []string{
		"email", "emails", "smtp", "sendgrid", "mailer",
	}},
	{types.FeatureFile, []string{
		"file upload", "file uploads", "file storage", "upload", "attachment", "s3",
	}},
	{types.FeatureSearch, []string{
		"search", "elasticsearch", "full-text", "full text search",
	}},
	{types.FeatureCache, []string{
		"cache", "caching", "redis", "memcached",
	}},
	{types.FeatureMonitoring, []string{
		"monitoring", "observability", "metrics", "alerting", "logging",
	}},
	{types.FeatureFintech, []string{
		"fintech", "banking", "financial", "finance", "trading", "ledger",
		"loan", "brokerage",
	}},
	{types.FeatureHealthcare, []string{
		"healthcare", "health care", "medical", "patient", "patients",
		"hipaa", "clinical", "ehr",
	}},
	{types.FeatureEcommerce, []string{
		"ecommerce", "e-commerce", "online store", "shop", "shopping cart",
		"cart", "product catalog", "marketplace",
	}},
}

// apiPhrases gate both the api feature tag and the api project type.
var apiPhrases = []string{"rest api", "backend api", "server api", "rest endpoint"}

// frontendSignals are explicit UI-stack literals used by project-type rules.
var frontendSignals = []string{"react", "vue", "angular", "frontend", "front-end", "context api", "state management"}

// projectRule is one ordered project-type classification rule.
type projectRule struct {
	name    string
	matches func(text string) bool
	result  types.ProjectType
}

// projectRules is evaluated top to bottom; the first match wins. Full-stack
// combination patterns come first, then explicit frontend literals, then
// library literals, then the generic keyword table. The caller defaults to
// web-app when nothing matches.
var projectRules = []projectRule{
	{
		name: "explicit fullstack",
		matches: func(text string) bool {
			return matchAny(text, []string{"fullstack", "full-stack", "full stack"})
		},
		result: types.ProjectTypeFullstack,
	},
	{
		name: "frontend plus backend combination",
		matches: func(text string) bool {
			return matchAny(text, frontendSignals) &&
				(matchAny(text, apiPhrases) || matchAny(text, []string{"backend", "server-side"}))
		},
		result: types.ProjectTypeFullstack,
	},
	{
		name: "explicit frontend stack",
		matches: func(text string) bool {
			return matchAny(text, frontendSignals) ||
				matchAny(text, []string{"spa", "dashboard", "web app", "webapp", "website"})
		},
		result: types.ProjectTypeWebApp,
	},
	{
		name: "library literals",
		matches: func(text string) bool {
			return matchAny(text, []string{"library", "package", "sdk", "reusable module"})
		},
		result: types.ProjectTypeLibrary,
	},
	{
		name: "server api keywords",
		matches: func(text string) bool {
			return matchAny(text, apiPhrases) || matchAny(text, []string{"microservice", "graphql"})
		},
		result: types.ProjectTypeAPI,
	},
	{
		name: "cli keywords",
		matches: func(text string) bool {
			return matchAny(text, []string{"cli", "command line", "command-line", "terminal", "console tool"})
		},
		result: types.ProjectTypeCLI,
	},
	{
		// The bare "app" literal is permitted here: broad matches are fine
		// for project type, only feature tags need word boundaries.
		name: "generic application keywords",
		matches: func(text string) bool {
			return strings.Contains(text, "app") || matchAny(text, []string{"web", "site"})
		},
		result: types.ProjectTypeWebApp,
	},
}

// wordPatterns caches compiled word-boundary matchers for single-word keywords.
var wordPatterns = map[string]*regexp.Regexp{}

func init() {
	compile := func(kw string) {
		if strings.ContainsAny(kw, " -") {
			return // multi-word keywords match by substring
		}
		if _, ok := wordPatterns[kw]; ok {
			return
		}
		wordPatterns[kw] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
	}

	for _, rule := range featureRules {
		for _, kw := range rule.keywords {
			compile(kw)
		}
	}
	for _, kw := range []string{
		"fullstack", "backend", "spa", "dashboard", "webapp", "website",
		"library", "package", "sdk", "microservice", "graphql", "cli",
		"terminal", "web", "site", "react", "vue", "angular", "frontend",
		"blog", "posts", "comments",
	} {
		compile(kw)
	}
}

// matchKeyword reports whether a single keyword matches the lowercased text.
func matchKeyword(text, kw string) bool {
	if strings.ContainsAny(kw, " -") {
		return strings.Contains(text, kw)
	}
	if pattern, ok := wordPatterns[kw]; ok {
		return pattern.MatchString(text)
	}
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`).MatchString(text)
}

// matchAny reports whether any keyword in the list matches.
func matchAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if matchKeyword(text, kw) {
			return true
		}
	}
	return false
}
