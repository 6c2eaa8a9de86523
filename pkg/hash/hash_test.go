package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashCheck(t *testing.T) {
	h, err := Hash("482913")
	require.NoError(t, err)
	require.NotEqual(t, "482913", h)
	require.True(t, Check(h, "482913"))
	require.False(t, Check(h, "482914"))
	require.False(t, Check("not-a-hash", "482913"))
}
