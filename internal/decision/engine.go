// Package decision scores competing technology choices for an analyzed task.
// All scoring is deterministic and performs no I/O.
package decision

import (
	"math"

	"github.com/felixgeelhaar/planforge/pkg/planforge/types"
)

// Candidate names. Order matters: on a score tie the first-listed candidate
// wins (SQL before NoSQL, Node.js before FastAPI, React sole frontend).
const (
	TechPostgreSQL = "PostgreSQL"
	TechMongoDB    = "MongoDB"
	TechNodeJS     = "Node.js"
	TechFastAPI    = "FastAPI"
	TechReact      = "React"
)

// Confidence bounds. Raw adjustments are clamped into this range and rounded
// to two decimal places.
const (
	minConfidence = 0.1
	maxConfidence = 0.95
)

// AnalyzeDatabase scores SQL (PostgreSQL) against NoSQL (MongoDB) for the
// given analysis and returns the winning recommendation.
func AnalyzeDatabase(a *types.TaskAnalysis) *types.TechnologyComparison {
	sql := 0.5
	nosql := 0.5

	if a.HasFintech {
		sql += 0.3
		nosql -= 0.3
	}
	if a.HasHealthcare {
		sql += 0.25
		nosql -= 0.25
	}
	if a.HasAuth {
		sql += 0.15
	}
	if a.HasFeature(types.FeaturePayment) {
		sql += 0.15
	}
	if a.HasEcommerce {
		sql += 0.1
	}
	if a.HasRealtime {
		nosql += 0.2
	}
	if a.Complexity == types.ComplexityComplex {
		sql += 0.1
	}

	sql = clampScore(sql)
	nosql = clampScore(nosql)

	winner := TechPostgreSQL
	winScore := sql
	if nosql > sql {
		winner = TechMongoDB
		winScore = nosql
	}

	confidence := winScore

	// Domain fit.
	switch winner {
	case TechPostgreSQL:
		if a.HasFintech {
			confidence += 0.15
		}
		if a.HasHealthcare {
			confidence += 0.1
		}
	case TechMongoDB:
		if a.HasFintech {
			confidence -= 0.2
		}
		if a.HasHealthcare {
			confidence -= 0.15
		}
	}

	// Feature fit.
	if winner == TechPostgreSQL && (a.HasAuth || a.HasFeature(types.FeaturePayment)) {
		confidence += 0.05
	}

	confidence += decisiveness(sql, nosql)

	return buildDatabaseComparison(a, winner, roundConfidence(confidence))
}

// AnalyzeBackend scores Node.js against FastAPI.
func AnalyzeBackend(a *types.TaskAnalysis) *types.TechnologyComparison {
	node := 0.5
	fastapi := 0.3

	if a.HasFastAPI {
		fastapi += 0.4
	}
	if a.HasRealtime {
		node += 0.2
	}
	if a.HasFrontend {
		node += 0.1
	}

	node = clampScore(node)
	fastapi = clampScore(fastapi)

	winner := TechNodeJS
	winScore := node
	if fastapi > node {
		winner = TechFastAPI
		winScore = fastapi
	}

	confidence := winScore

	// Explicit requests dominate: an explicit FastAPI signal boosts FastAPI.
	if winner == TechFastAPI && a.HasFastAPI {
		confidence += 0.2
	}
	if winner == TechNodeJS && a.HasRealtime {
		confidence += 0.1
	}

	confidence += decisiveness(node, fastapi)

	return buildBackendComparison(a, winner, roundConfidence(confidence))
}

// AnalyzeFrontend scores frontend frameworks. React is currently the sole
// candidate, so the comparison is against an empty slate.
func AnalyzeFrontend(a *types.TaskAnalysis) *types.TechnologyComparison {
	react := 0.7

	if a.HasFeature(types.FeatureFrontend) {
		react += 0.1
	}
	if a.ProjectType == types.ProjectTypeFullstack {
		react += 0.05
	}
	if a.HasRealtime {
		react += 0.05
	}

	react = clampScore(react)

	confidence := react + decisiveness(react, 0)

	return buildFrontendComparison(a, TechReact, roundConfidence(confidence))
}

// decisiveness rewards a clear winner and penalizes a near-tie.
func decisiveness(a, b float64) float64 {
	diff := math.Abs(a - b)
	switch {
	case diff > 0.5:
		return 0.1
	case diff < 0.2:
		return -0.1
	default:
		return 0
	}
}

func clampScore(s float64) float64 {
	return math.Min(1, math.Max(0, s))
}

func roundConfidence(c float64) float64 {
	c = math.Min(maxConfidence, math.Max(minConfidence, c))
	return math.Round(c*100) / 100
}
