package progress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDocumentsBar_CountsToTotal(t *testing.T) {
	var buf bytes.Buffer
	bar := NewDocumentsBar(400, "loading", &buf)

	require.NoError(t, bar.Add(200))
	require.NoError(t, bar.Add(200))
	require.NoError(t, bar.Close())

	require.True(t, bar.IsFinished())
	require.Contains(t, buf.String(), "loading")
}
