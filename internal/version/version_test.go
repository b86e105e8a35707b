package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	v, c, b := Version, GitCommit, BuildTime
	t.Cleanup(func() { Version, GitCommit, BuildTime = v, c, b })

	Version, GitCommit, BuildTime = "unknown", "unknown", "unknown"
	assert.Equal(t, "sitegen unknown", String())

	Version, GitCommit, BuildTime = "v1.2.0", "abc123", "2026-01-02"
	assert.Equal(t, "sitegen v1.2.0 (abc123) built 2026-01-02", String())
}
