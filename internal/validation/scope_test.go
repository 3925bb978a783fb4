package validation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/queryward/queryward/internal/schema"
)

func TestScopeStacksBalance(t *testing.T) {
	var sc scopes
	require.True(t, sc.balanced())

	sc.pushType(scopeType{def: &schema.Type{Name: "Query"}})
	sc.pushField(anyField)
	sc.pushArgument(anyArgument)
	sc.pushSeen()
	require.False(t, sc.balanced())

	require.Equal(t, "Query", sc.types[0].name())
	sc.popSeen()
	sc.popArgument()
	sc.popField()
	sc.popType()
	require.True(t, sc.balanced())
}

func TestScopeUnderflowPanics(t *testing.T) {
	require.Panics(t, func() { new(scopes).popType() })
	require.Panics(t, func() { new(scopes).popField() })
	require.Panics(t, func() { new(scopes).popArgument() })
	require.Panics(t, func() { new(scopes).popSeen() })
	require.Panics(t, func() { new(scopes).closeDirective() })
}

func TestDirectiveSlotCannotNest(t *testing.T) {
	var sc scopes
	sc.openDirective(scopeDirective{})
	require.Panics(t, func() { sc.openDirective(scopeDirective{}) })
}

func TestEmptyStacksAreSentinels(t *testing.T) {
	var sc scopes
	require.False(t, sc.currentType().known())
	require.False(t, sc.currentField().known())
	require.False(t, sc.currentArgument().known())
	require.False(t, sc.insideArgument())

	// markSeen outside any tracked frame is a no-op.
	sc.markSeen("x")
	require.True(t, sc.balanced())
}
