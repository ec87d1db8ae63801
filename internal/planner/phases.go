package planner

import (
	"github.com/felixgeelhaar/planforge/pkg/planforge/types"
)

// Fixed per-phase time estimates.
const (
	setupEstimate    = "30 minutes"
	databaseEstimate = "45 minutes"
	authEstimate     = "60 minutes"
	backendEstimate  = "90 minutes"
	frontendEstimate = "120 minutes"
	testingEstimate  = "60 minutes"
)

func newPhase(id types.PhaseID, name, description, estimate string, deps []types.PhaseID, files []types.FileChange) types.Phase {
	return types.Phase{
		ID:            id,
		Name:          name,
		Description:   description,
		Files:         files,
		Dependencies:  deps,
		EstimatedTime: estimate,
		Status:        types.PhaseStatusPending,
	}
}

func create(path, description string, details ...string) types.FileChange {
	return types.FileChange{
		Path:        path,
		Action:      types.ActionCreate,
		Description: description,
		Details:     details,
	}
}

func buildSetupPhase(a *types.TaskAnalysis) types.Phase {
	var files []types.FileChange
	if a.HasFastAPI {
		files = []types.FileChange{
			create("requirements.txt", "Pin FastAPI, Uvicorn, and Pydantic versions"),
			create("pyproject.toml", "Project metadata and tool configuration"),
			create("app/main.py", "Application entrypoint with the FastAPI instance",
				"Mount routers", "Configure CORS middleware"),
			create(".env.example", "Document required environment variables"),
		}
	} else {
		files = []types.FileChange{
			create("package.json", "Project manifest with scripts and dependencies"),
			create("tsconfig.json", "Strict TypeScript compiler configuration"),
			create("src/index.ts", "Application entrypoint",
				"Load environment configuration", "Start the server"),
			create(".env.example", "Document required environment variables"),
		}
	}

	return newPhase(types.PhaseSetup, "Project Setup",
		"Scaffold the project structure, dependency manifests, and base configuration.",
		setupEstimate, nil, files)
}

func buildDatabasePhase(a *types.TaskAnalysis) types.Phase {
	var files []types.FileChange
	if a.HasFastAPI {
		files = []types.FileChange{
			create("app/database.py", "Engine, session factory, and connection settings"),
			create("app/models/__init__.py", "Model package exports"),
		}
		switch {
		case a.HasFintech:
			files = append(files,
				create("app/models/account.py", "Account model with balance constraints",
					"Use NUMERIC for monetary amounts"),
				create("app/models/transaction.py", "Immutable transaction ledger rows",
					"Append-only, no updates or deletes"),
			)
		case a.HasEcommerce:
			files = append(files,
				create("app/models/product.py", "Product catalog model"),
				create("app/models/order.py", "Order and line-item models"),
			)
		default:
			files = append(files,
				create("app/models/user.py", "Core user model"),
			)
		}
	} else {
		files = []types.FileChange{
			create("prisma/schema.prisma", "Database schema and datasource configuration"),
			create("src/db/client.ts", "Shared database client instance"),
		}
		switch {
		case a.HasFintech:
			files = append(files,
				create("src/models/account.ts", "Account access layer with balance constraints",
					"Use decimal types for monetary amounts"),
				create("src/models/transaction.ts", "Immutable transaction ledger access",
					"Append-only, no updates or deletes"),
			)
		case a.HasEcommerce:
			files = append(files,
				create("src/models/product.ts", "Product catalog access layer"),
				create("src/models/order.ts", "Order and line-item access layer"),
			)
		default:
			files = append(files,
				create("src/models/user.ts", "Core user access layer"),
			)
		}
	}

	return newPhase(types.PhaseDatabase, "Database Layer",
		"Define the schema, connection handling, and data access for the domain models.",
		databaseEstimate, []types.PhaseID{types.PhaseSetup}, files)
}

func buildAuthPhase(a *types.TaskAnalysis) types.Phase {
	var files []types.FileChange
	if a.HasFastAPI {
		files = []types.FileChange{
			create("app/security.py", "Password hashing and token signing helpers"),
			create("app/auth/dependencies.py", "Request dependencies that resolve the current user"),
			create("app/routers/auth.py", "Registration, login, and token refresh routes"),
		}
	} else {
		files = []types.FileChange{
			create("src/auth/jwt.ts", "Token issuing and verification helpers"),
			create("src/auth/middleware.ts", "Request middleware that resolves the current user"),
			create("src/auth/routes.ts", "Registration, login, and token refresh routes"),
		}
	}

	deps := []types.PhaseID{types.PhaseSetup}
	if a.HasDatabase {
		deps = append(deps, types.PhaseDatabase)
	}

	return newPhase(types.PhaseAuth, "Authentication",
		"Implement user registration, login, and session handling with hashed credentials.",
		authEstimate, deps, files)
}

func buildBackendPhase(a *types.TaskAnalysis) types.Phase {
	var files []types.FileChange
	if a.HasFastAPI {
		files = []types.FileChange{
			create("app/routers/api.py", "Core API routes"),
			create("app/services.py", "Business logic separated from route handlers"),
		}
		switch {
		case a.HasFintech:
			files = append(files,
				create("app/routers/transactions.py", "Transaction endpoints with idempotency keys"),
			)
		case a.HasEcommerce:
			files = append(files,
				create("app/routers/products.py", "Product catalog endpoints"),
				create("app/routers/orders.py", "Order placement and status endpoints"),
			)
		}
	} else {
		files = []types.FileChange{
			create("src/routes/index.ts", "Route registration and core API endpoints"),
			create("src/services/index.ts", "Business logic separated from route handlers"),
		}
		switch {
		case a.HasFintech:
			files = append(files,
				create("src/routes/transactions.ts", "Transaction endpoints with idempotency keys"),
			)
		case a.HasEcommerce:
			files = append(files,
				create("src/routes/products.ts", "Product catalog endpoints"),
				create("src/routes/orders.ts", "Order placement and status endpoints"),
			)
		}
	}

	deps := []types.PhaseID{types.PhaseSetup}
	if a.HasDatabase {
		deps = []types.PhaseID{types.PhaseDatabase}
	}

	return newPhase(types.PhaseBackend, "Backend Services",
		"Build the API routes and business logic on top of the data layer.",
		backendEstimate, deps, files)
}

func buildFrontendPhase(a *types.TaskAnalysis) types.Phase {
	// The frontend is React regardless of backend choice; with a FastAPI
	// backend it lives in a separate frontend/ tree.
	prefix := "src/"
	if a.HasFastAPI {
		prefix = "frontend/src/"
	}

	files := []types.FileChange{
		create(prefix+"components/App.tsx", "Root component and route layout"),
		create(prefix+"components/Layout.tsx", "Shared page chrome"),
		create(prefix+"state/store.ts", "Client state management"),
		create(prefix+"api/client.ts", "Typed HTTP client for the backend API"),
	}
	if a.HasRealtime {
		files = append(files,
			create(prefix+"api/socket.ts", "Realtime connection with reconnect handling"))
	}

	deps := []types.PhaseID{types.PhaseSetup}
	if a.HasBackend {
		deps = []types.PhaseID{types.PhaseBackend}
	}

	return newPhase(types.PhaseFrontend, "Frontend",
		"Build the user interface, client state, and API integration.",
		frontendEstimate, deps, files)
}

func buildTestingPhase(a *types.TaskAnalysis) types.Phase {
	var files []types.FileChange
	if a.HasFastAPI {
		files = []types.FileChange{
			create("pytest.ini", "Test runner configuration"),
			create("tests/conftest.py", "Shared fixtures and test database setup"),
			create("tests/test_api.py", "API endpoint tests against a test client"),
		}
	} else {
		files = []types.FileChange{
			create("jest.config.js", "Test runner configuration"),
			create("tests/api.test.ts", "API endpoint tests against a test server"),
		}
		if a.HasFrontend {
			files = append(files,
				create("tests/components.test.tsx", "Component rendering and interaction tests"))
		}
	}

	// Depend on the latest phase that exists before testing.
	deps := []types.PhaseID{types.PhaseSetup}
	switch {
	case a.HasFrontend:
		deps = []types.PhaseID{types.PhaseFrontend}
	case a.HasBackend:
		deps = []types.PhaseID{types.PhaseBackend}
	}

	return newPhase(types.PhaseTesting, "Testing",
		"Add automated test coverage for the implemented functionality.",
		testingEstimate, deps, files)
}
