package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCommaSepToMap(t *testing.T) {
	assert.Equal(t, map[string]string{"a": "1", "b": "x=y"}, SplitCommaSepToMap("a=1,,bad,b=x=y,=3"))
	assert.Empty(t, SplitCommaSepToMap(""))
}

func TestParseFloatMap(t *testing.T) {
	m, err := ParseFloatMap("nano1=512, orin=1024.5")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"nano1": 512, "orin": 1024.5}, m)

	_, err = ParseFloatMap("nano1=lots")
	assert.Error(t, err)
}

func TestGenRoundID(t *testing.T) {
	a, b := GenRoundID(""), GenRoundID("round")
	assert.Len(t, a, 36)
	assert.True(t, strings.HasPrefix(b, "round-"))
	assert.NotEqual(t, GenUUID(), GenUUID())
}
