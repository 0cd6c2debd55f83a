package passes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const rotatedTableSource = `
var _0x1234 = ['b', 'a', 'c'];
(function (arr, count) {
  while (count--) {
    arr.push(arr.shift());
  }
})(_0x1234, 2);
function decoder(idx) {
  return _0x1234[idx];
}
decoder.extra = 1;
var x = decoder(0);
`

func TestResolveAugmentedFunctionWrappedArrayReplacementsFoldsRotatedIndex(t *testing.T) {
	tr := mustTree(t, rotatedTableSource)
	out, changed, err := runResolveAugmentedFunctionWrappedArrayReplacements(context.Background(), tr, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.True(t, changed)
	assert.Contains(t, out.Script(), "'c'")
	assert.NotContains(t, out.Script(), "decoder(0)")
}

func TestResolveAugmentedFunctionWrappedArrayReplacementsSkipsUnaugmentedDecoder(t *testing.T) {
	src := `
var _0x1234 = ['b', 'a', 'c'];
(function (arr, count) {
  while (count--) {
    arr.push(arr.shift());
  }
})(_0x1234, 2);
function decoder(idx) {
  return _0x1234[idx];
}
var x = decoder(0);
`
	tr := mustTree(t, src)
	_, changed, err := runResolveAugmentedFunctionWrappedArrayReplacements(context.Background(), tr, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.False(t, changed)
}
