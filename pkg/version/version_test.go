package version

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	info := Get()

	assert.Equal(t, Version, info.Version)
	assert.Equal(t, GitCommit, info.GitCommit)
}

func TestInfo_String(t *testing.T) {
	info := Info{
		Version:   "0.1.0",
		GitCommit: "abc123",
	}

	assert.Equal(t, "Version: 0.1.0, GitCommit: abc123", info.String())
}

func TestInfo_JSON(t *testing.T) {
	info := Info{
		Version:   "0.1.0",
		GitCommit: "abc123",
	}

	jsonString, err := info.JSON()
	require.NoError(t, err)

	var parsed Info
	require.NoError(t, json.Unmarshal([]byte(jsonString), &parsed))
	assert.Equal(t, info, parsed)
	assert.Contains(t, jsonString, `"version"`)
	assert.Contains(t, jsonString, `"gitCommit"`)
}
