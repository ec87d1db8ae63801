package decision

import "github.com/felixgeelhaar/planforge/pkg/planforge/types"

// Fixed timeline tables, keyed by complexity tier. Each axis has its own
// table because the integration effort differs.
var (
	databaseTimelines = map[types.Complexity]string{
		types.ComplexitySimple:  "1-2 days",
		types.ComplexityMedium:  "3-5 days",
		types.ComplexityComplex: "1-2 weeks",
	}
	backendTimelines = map[types.Complexity]string{
		types.ComplexitySimple:  "2-3 days",
		types.ComplexityMedium:  "1-2 weeks",
		types.ComplexityComplex: "2-4 weeks",
	}
	frontendTimelines = map[types.Complexity]string{
		types.ComplexitySimple:  "2-4 days",
		types.ComplexityMedium:  "1-2 weeks",
		types.ComplexityComplex: "3-5 weeks",
	}
)

func buildDatabaseComparison(a *types.TaskAnalysis, winner string, confidence float64) *types.TechnologyComparison {
	cmp := &types.TechnologyComparison{
		Recommendation: winner,
		Confidence:     confidence,
		Estimate: types.ImplementationEstimate{
			Complexity: a.Complexity,
			Timeline:   databaseTimelines[a.Complexity],
		},
	}

	switch winner {
	case TechPostgreSQL:
		cmp.Reasoning = []string{
			"Relational schema fits structured application data",
			"ACID transactions protect multi-step writes",
			"Mature ecosystem of migrations, ORMs, and tooling",
		}
		if a.HasFintech {
			// Regulated domains get the compliance-focused rationale.
			cmp.Reasoning = []string{
				"Financial data requires ACID guarantees for every ledger write",
				"Relational constraints enforce double-entry integrity at the schema level",
				"Audit trails and point-in-time recovery satisfy compliance reviews",
				"SQL is the lingua franca of financial reporting and reconciliation",
			}
		}
		cmp.Pros = []string{
			"Strong consistency and transactional integrity",
			"Rich query capabilities including joins and window functions",
			"Battle-tested at every scale tier",
		}
		cmp.Cons = []string{
			"Schema migrations require coordination",
			"Horizontal scaling takes more operational effort than document stores",
		}
		cmp.Alternatives = []types.Alternative{
			{
				Technology: TechMongoDB,
				UseWhen:    "Document-shaped data with rapidly evolving schemas and no cross-entity transactions",
				Tradeoffs:  []string{"Weaker consistency defaults", "No relational joins"},
			},
		}
		cmp.Estimate.LearningCurve = "moderate - SQL fundamentals plus an ORM"
	case TechMongoDB:
		cmp.Reasoning = []string{
			"Flexible document model suits evolving or nested data",
			"Horizontal scaling is built in via sharding",
			"JSON-native storage matches the API payloads",
		}
		cmp.Pros = []string{
			"Schema flexibility during early iteration",
			"Natural fit for event and activity streams",
			"Simple horizontal scale-out",
		}
		cmp.Cons = []string{
			"Multi-document transactions are slower and more limited",
			"Data integrity rules live in application code",
		}
		cmp.Alternatives = []types.Alternative{
			{
				Technology: TechPostgreSQL,
				UseWhen:    "Strong consistency, relational integrity, or regulated domains",
				Tradeoffs:  []string{"Less flexible schema evolution", "More upfront modeling"},
			},
		}
		cmp.Estimate.LearningCurve = "gentle - JSON documents map directly to application objects"
	}

	return cmp
}

func buildBackendComparison(a *types.TaskAnalysis, winner string, confidence float64) *types.TechnologyComparison {
	cmp := &types.TechnologyComparison{
		Recommendation: winner,
		Confidence:     confidence,
		Estimate: types.ImplementationEstimate{
			Complexity: a.Complexity,
			Timeline:   backendTimelines[a.Complexity],
		},
	}

	switch winner {
	case TechNodeJS:
		cmp.Reasoning = []string{
			"Single language across frontend and backend reduces context switching",
			"Event-driven runtime handles many concurrent connections",
			"npm ecosystem covers nearly every integration need",
		}
		cmp.Pros = []string{
			"Shared TypeScript types between client and server",
			"Excellent WebSocket and streaming support",
			"Fast iteration with a large talent pool",
		}
		cmp.Cons = []string{
			"CPU-bound work blocks the event loop",
			"Dependency sprawl requires discipline",
		}
		cmp.Alternatives = []types.Alternative{
			{
				Technology: TechFastAPI,
				UseWhen:    "Python-centric teams or ML-adjacent services",
				Tradeoffs:  []string{"Second language in a TypeScript stack", "Smaller realtime ecosystem"},
			},
		}
		cmp.Estimate.LearningCurve = "gentle for JavaScript teams"
	case TechFastAPI:
		cmp.Reasoning = []string{
			"Explicitly requested Python/FastAPI stack",
			"Pydantic models give validated, self-documenting endpoints",
			"Async support handles concurrent I/O well",
		}
		cmp.Pros = []string{
			"Automatic OpenAPI documentation",
			"Type-validated request and response models",
			"First-class fit for Python data and ML libraries",
		}
		cmp.Cons = []string{
			"Separate language from a JavaScript frontend",
			"Smaller middleware ecosystem than Express",
		}
		cmp.Alternatives = []types.Alternative{
			{
				Technology: TechNodeJS,
				UseWhen:    "Full-stack TypeScript or heavy realtime requirements",
				Tradeoffs:  []string{"No Pydantic-style validation built in", "Weaker ML library story"},
			},
		}
		cmp.Estimate.LearningCurve = "gentle for Python teams"
	}

	return cmp
}

func buildFrontendComparison(a *types.TaskAnalysis, winner string, confidence float64) *types.TechnologyComparison {
	return &types.TechnologyComparison{
		Recommendation: winner,
		Confidence:     confidence,
		Reasoning: []string{
			"Component model scales from simple pages to complex interfaces",
			"Largest ecosystem of libraries, tooling, and hiring pool",
			"Context API and hooks cover state management without extra dependencies",
		},
		Pros: []string{
			"Mature tooling and testing story",
			"Huge component ecosystem",
			"Incremental adoption path",
		},
		Cons: []string{
			"JSX and hooks have a learning curve",
			"Unopinionated - architecture decisions fall on the team",
		},
		Alternatives: []types.Alternative{
			{
				Technology: "Vue",
				UseWhen:    "Teams preferring template-driven components and gentler onboarding",
				Tradeoffs:  []string{"Smaller ecosystem", "Fewer enterprise patterns"},
			},
		},
		Estimate: types.ImplementationEstimate{
			Complexity:    a.Complexity,
			Timeline:      frontendTimelines[a.Complexity],
			LearningCurve: "moderate - hooks and component patterns",
		},
	}
}
