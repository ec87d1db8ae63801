package version

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetInfoFillsRuntimeFields(t *testing.T) {
	info := GetInfo()

	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
}

func TestStringShortensCommit(t *testing.T) {
	info := Info{
		Version: "1.2.3",
		Commit:  "0123456789abcdef",
		Date:    "2026-01-01",
	}

	s := info.String()
	assert.Contains(t, s, "planforge 1.2.3")
	assert.Contains(t, s, "(01234567)")
	assert.NotContains(t, s, "0123456789abcdef")
}

func TestInfoJSONFieldNames(t *testing.T) {
	data, err := json.Marshal(GetInfo())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "version")
	assert.Contains(t, raw, "go_version")
}
