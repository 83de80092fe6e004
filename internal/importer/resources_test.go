package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessMemoryMB(t *testing.T) {
	t.Parallel()

	rss, err := processMemoryMB()
	require.NoError(t, err)
	assert.Positive(t, rss)
}
