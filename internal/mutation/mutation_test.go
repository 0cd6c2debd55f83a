package mutation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unscrambl/jsderef/internal/arborist"
)

func bindingNamed(t *testing.T, src, name string) *arborist.Binding {
	t.Helper()
	tr, err := arborist.New(context.Background(), []byte(src))
	require.NoError(t, err)
	b := tr.Root.Scope.Bindings[name]
	require.NotNil(t, b)
	return b
}

func TestIsMutatedDetectsAssignment(t *testing.T) {
	b := bindingNamed(t, "var a = 1; a = 2;", "a")
	assert.True(t, IsMutated(b))
}

func TestIsMutatedDetectsPush(t *testing.T) {
	b := bindingNamed(t, "var a = []; a.push(1);", "a")
	assert.True(t, IsMutated(b))
}

func TestIsMutatedFalseForReadOnly(t *testing.T) {
	b := bindingNamed(t, "var a = 1; var b = a + 1;", "a")
	assert.False(t, IsMutated(b))
}
