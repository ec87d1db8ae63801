// Package analysis classifies free-text task descriptions into a structured
// feature and project-type signature. Analyze is a pure function: no side
// effects, no I/O.
package analysis

import (
	"strings"

	"github.com/felixgeelhaar/planforge/internal/decision"
	"github.com/felixgeelhaar/planforge/pkg/planforge/types"
)

// Complexity thresholds over the detected feature count.
const (
	simpleMaxFeatures = 2
	mediumMaxFeatures = 5
)

// Analyze classifies task text into a TaskAnalysis snapshot.
//
// Classification ambiguity is resolved by fixed precedence rules and never
// errors: an empty string classifies as a simple web-app with zero features
// (which still attaches database and frontend recommendations, since the
// web-app default implies both).
func Analyze(task string) *types.TaskAnalysis {
	text := strings.ToLower(task)

	a := &types.TaskAnalysis{
		ProjectType: detectProjectType(text),
		Features:    detectFeatures(text),
	}

	a.Complexity = complexityFor(len(a.Features))

	a.HasAuth = a.HasFeature(types.FeatureAuth)
	a.HasRealtime = a.HasFeature(types.FeatureRealtime)
	a.HasFastAPI = a.HasFeature(types.FeatureFastAPI)
	a.HasFintech = a.HasFeature(types.FeatureFintech)
	a.HasHealthcare = a.HasFeature(types.FeatureHealthcare)
	a.HasEcommerce = a.HasFeature(types.FeatureEcommerce)

	a.HasDatabase = a.HasFeature(types.FeatureDatabase) || a.HasAuth ||
		a.ProjectType == types.ProjectTypeWebApp || a.ProjectType == types.ProjectTypeFullstack

	a.HasFrontend = a.HasFeature(types.FeatureFrontend) ||
		a.ProjectType == types.ProjectTypeWebApp || a.ProjectType == types.ProjectTypeFullstack

	a.HasBackend = hasBackend(a, text)

	if a.HasDatabase {
		a.DatabaseRecommendation = decision.AnalyzeDatabase(a)
	}
	if a.HasBackend {
		a.BackendRecommendation = decision.AnalyzeBackend(a)
	}
	if a.HasFrontend {
		a.FrontendRecommendation = decision.AnalyzeFrontend(a)
	}

	return a
}

// detectProjectType evaluates the ordered project rules, defaulting to web-app.
func detectProjectType(text string) types.ProjectType {
	for _, rule := range projectRules {
		if rule.matches(text) {
			return rule.result
		}
	}
	return types.ProjectTypeWebApp
}

// detectFeatures walks the catalog and collects matching tags in detection
// order. Tags are unique by construction: each rule appears once.
func detectFeatures(text string) []types.Feature {
	features := []types.Feature{}
	for _, rule := range featureRules {
		if matchAny(text, rule.keywords) {
			features = append(features, rule.tag)
		}
	}
	return features
}

// hasBackend derives the backend flag from tags, project type, and raw text.
// A plain web-app only counts as backend work when it persists data or reads
// like a content site (blog, posts, comments).
func hasBackend(a *types.TaskAnalysis, text string) bool {
	if a.HasFeature(types.FeatureAPI) || a.HasFastAPI || a.HasAuth ||
		a.HasFintech || a.HasEcommerce {
		return true
	}
	if a.ProjectType == types.ProjectTypeAPI || a.ProjectType == types.ProjectTypeFullstack {
		return true
	}
	if strings.Contains(text, "backend") {
		return true
	}
	if a.ProjectType == types.ProjectTypeWebApp {
		if a.HasFeature(types.FeatureDatabase) ||
			matchAny(text, []string{"blog", "posts", "comments"}) {
			return true
		}
	}
	return false
}

func complexityFor(featureCount int) types.Complexity {
	switch {
	case featureCount <= simpleMaxFeatures:
		return types.ComplexitySimple
	case featureCount <= mediumMaxFeatures:
		return types.ComplexityMedium
	default:
		return types.ComplexityComplex
	}
}
