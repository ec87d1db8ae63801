package enhance

import (
	"encoding/hex"
	"sort"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/felixgeelhaar/planforge/pkg/planforge/types"
)

// taskHashLength is the truncated hex length of the external task identifier.
// Collisions are accepted as extremely unlikely; two task phrasings that
// normalize identically deliberately share state.
const taskHashLength = 16

// TaskHash computes the external polling identifier for a task: a blake3
// digest of the lowercased, whitespace-trimmed task text, truncated.
func TaskHash(task string) string {
	normalized := normalizeTask(task)
	sum := blake3.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])[:taskHashLength]
}

// CacheKey derives the enhancement cache key from the normalized task, the
// phase name, and the phase's sorted file paths.
func CacheKey(task string, phase types.Phase) string {
	paths := make([]string, len(phase.Files))
	for i, f := range phase.Files {
		paths[i] = f.Path
	}
	sort.Strings(paths)

	var b strings.Builder
	b.WriteString(normalizeTask(task))
	b.WriteByte(0)
	b.WriteString(phase.Name)
	b.WriteByte(0)
	b.WriteString(strings.Join(paths, "\n"))

	sum := blake3.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func normalizeTask(task string) string {
	return strings.ToLower(strings.TrimSpace(task))
}
