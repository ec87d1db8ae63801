package types

// TechnologyComparison is one technology recommendation produced by the
// decision engine. Read-only after creation.
type TechnologyComparison struct {
	// Recommendation is the chosen technology name.
	Recommendation string `json:"recommendation"`

	// Confidence is in [0.1, 0.95], rounded to two decimal places.
	Confidence float64 `json:"confidence"`

	// Reasoning explains the choice, in order of importance.
	Reasoning []string `json:"reasoning"`

	Pros []string `json:"pros"`
	Cons []string `json:"cons"`

	// Alternatives lists competing technologies and when to prefer them.
	Alternatives []Alternative `json:"alternatives"`

	Estimate ImplementationEstimate `json:"estimate"`
}

// Alternative describes a competing technology and its tradeoffs.
type Alternative struct {
	Technology string   `json:"technology"`
	UseWhen    string   `json:"use_when"`
	Tradeoffs  []string `json:"tradeoffs"`
}

// ImplementationEstimate sizes the effort of adopting the recommendation.
type ImplementationEstimate struct {
	Complexity    Complexity `json:"complexity"`
	Timeline      string     `json:"timeline"`
	LearningCurve string     `json:"learning_curve"`
}
