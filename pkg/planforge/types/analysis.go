package types

// ProjectType classifies the kind of software a task describes.
type ProjectType string

const (
	ProjectTypeWebApp    ProjectType = "web-app"
	ProjectTypeAPI       ProjectType = "api"
	ProjectTypeCLI       ProjectType = "cli"
	ProjectTypeLibrary   ProjectType = "library"
	ProjectTypeFullstack ProjectType = "fullstack"
)

// Complexity buckets a task by the number of detected features.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

// Feature is a recognized capability tag detected in task text.
type Feature string

const (
	FeatureAuth       Feature = "auth"
	FeatureDatabase   Feature = "database"
	FeatureRealtime   Feature = "realtime"
	FeatureAPI        Feature = "api"
	FeatureFastAPI    Feature = "fastapi"
	FeatureFrontend   Feature = "frontend"
	FeatureTesting    Feature = "testing"
	FeaturePayment    Feature = "payment"
	FeatureEmail      Feature = "email"
	FeatureFile       Feature = "file"
	FeatureSearch     Feature = "search"
	FeatureCache      Feature = "cache"
	FeatureMonitoring Feature = "monitoring"
	FeatureFintech    Feature = "fintech"
	FeatureHealthcare Feature = "healthcare"
	FeatureEcommerce  Feature = "ecommerce"
)

// TaskAnalysis is an immutable snapshot of one task string.
// It is created once per task request and never mutated afterwards.
type TaskAnalysis struct {
	ProjectType ProjectType `json:"project_type"`
	// Features holds recognized tags in detection order. Uniqueness matters,
	// order does not.
	Features   []Feature  `json:"features"`
	Complexity Complexity `json:"complexity"`

	HasAuth       bool `json:"has_auth"`
	HasDatabase   bool `json:"has_database"`
	HasFrontend   bool `json:"has_frontend"`
	HasBackend    bool `json:"has_backend"`
	HasRealtime   bool `json:"has_realtime"`
	HasFastAPI    bool `json:"has_fastapi"`
	HasFintech    bool `json:"has_fintech"`
	HasHealthcare bool `json:"has_healthcare"`
	HasEcommerce  bool `json:"has_ecommerce"`

	DatabaseRecommendation *TechnologyComparison `json:"database_recommendation,omitempty"`
	BackendRecommendation  *TechnologyComparison `json:"backend_recommendation,omitempty"`
	FrontendRecommendation *TechnologyComparison `json:"frontend_recommendation,omitempty"`
}

// HasFeature reports whether the analysis detected the given tag.
func (a *TaskAnalysis) HasFeature(f Feature) bool {
	for _, feat := range a.Features {
		if feat == f {
			return true
		}
	}
	return false
}
