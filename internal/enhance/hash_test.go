package enhance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/planforge/pkg/planforge/types"
)

func TestTaskHashNormalization(t *testing.T) {
	base := TaskHash("Build a todo app")

	assert.Len(t, base, taskHashLength)
	assert.Equal(t, base, TaskHash("build a todo app"), "case must not matter")
	assert.Equal(t, base, TaskHash("  Build a todo app \n"), "surrounding whitespace must not matter")
	assert.NotEqual(t, base, TaskHash("build a notes app"))
}

func TestTaskHashIsStable(t *testing.T) {
	assert.Equal(t, TaskHash("same task"), TaskHash("same task"))
}

func TestCacheKeyIgnoresFileOrder(t *testing.T) {
	phase := types.Phase{
		Name: "Backend Services",
		Files: []types.FileChange{
			{Path: "src/routes/index.ts"},
			{Path: "src/services/index.ts"},
		},
	}
	reversed := types.Phase{
		Name: "Backend Services",
		Files: []types.FileChange{
			{Path: "src/services/index.ts"},
			{Path: "src/routes/index.ts"},
		},
	}

	assert.Equal(t, CacheKey("task", phase), CacheKey("task", reversed))
}

func TestCacheKeyVariesByPhaseAndTask(t *testing.T) {
	phase := types.Phase{Name: "Project Setup", Files: []types.FileChange{{Path: "package.json"}}}
	other := types.Phase{Name: "Testing", Files: []types.FileChange{{Path: "package.json"}}}

	assert.NotEqual(t, CacheKey("task a", phase), CacheKey("task b", phase))
	assert.NotEqual(t, CacheKey("task a", phase), CacheKey("task a", other))
	assert.Equal(t, CacheKey("Task A", phase), CacheKey("task a", phase),
		"task normalization applies to cache keys too")
}
