package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ctxWith(env, event map[string]interface{}) *VariableContext {
	c := NewVariableContext()
	for k, v := range env {
		c.EnvVars[k] = v
	}
	for k, v := range event {
		c.EventVars[k] = v
	}
	return c
}

func TestEngine_ResolveString_SimpleEnv(t *testing.T) {
	ctx := ctxWith(map[string]interface{}{"API_KEY": "sk-123"}, nil)
	e := NewEngineWithDefaults(ctx)

	out, err := e.ResolveString("Bearer {{ env.API_KEY }}")
	require.NoError(t, err)
	assert.Equal(t, "Bearer sk-123", out)
}

func TestEngine_ResolveString_WholeStringPreservesType(t *testing.T) {
	ctx := ctxWith(nil, map[string]interface{}{"count": 42})
	e := NewEngineWithDefaults(ctx)

	out, err := e.ResolveString("{{ event.count }}")
	require.NoError(t, err)
	assert.Equal(t, 42, out)
}

func TestEngine_ResolveString_DotIndexArrayAccess(t *testing.T) {
	ctx := ctxWith(nil, map[string]interface{}{
		"items": []interface{}{
			map[string]interface{}{"id": "a"},
			map[string]interface{}{"id": "b"},
		},
	})
	e := NewEngineWithDefaults(ctx)

	out, err := e.ResolveString("{{ event.items.1.id }}")
	require.NoError(t, err)
	assert.Equal(t, "b", out)
}

func TestEngine_ResolveString_HyphenatedMapKey(t *testing.T) {
	ctx := ctxWith(nil, map[string]interface{}{
		"headers": map[string]interface{}{
			"content-type": "application/json",
		},
	})
	e := NewEngineWithDefaults(ctx)

	out, err := e.ResolveString("{{ event.headers.content-type }}")
	require.NoError(t, err)
	assert.Equal(t, "application/json", out)
}

func TestEngine_ResolveString_MissingVariableStrictError(t *testing.T) {
	ctx := ctxWith(nil, nil)
	e := NewEngineWithDefaults(ctx)

	_, err := e.ResolveString("{{ env.MISSING }}")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVariableNotFound)
}

func TestEngine_ResolveString_NonStrictEmptySubstitution(t *testing.T) {
	ctx := ctxWith(nil, nil)
	e := NewEngine(ctx, Options{StrictMode: false})

	out, err := e.ResolveString("value=[{{ env.MISSING }}]")
	require.NoError(t, err)
	assert.Equal(t, "value=[]", out)
}

func TestEngine_Resolve_NestedMap(t *testing.T) {
	ctx := ctxWith(map[string]interface{}{"HOST": "api.example.com"}, nil)
	e := NewEngineWithDefaults(ctx)

	cfg := map[string]interface{}{
		"url":     "https://{{ env.HOST }}/v1",
		"headers": map[string]interface{}{"Authorization": "Bearer {{ env.HOST }}"},
	}

	out, err := e.Resolve(cfg)
	require.NoError(t, err)
	resolved := out.(map[string]interface{})
	assert.Equal(t, "https://api.example.com/v1", resolved["url"])
}

func TestHasPlaceholders(t *testing.T) {
	assert.True(t, HasPlaceholders("{{ env.X }}"))
	assert.False(t, HasPlaceholders("plain string"))
}

func TestValidateTemplate(t *testing.T) {
	assert.NoError(t, ValidateTemplate("{{ env.X }} and {{ event.y.0 }}"))
	assert.Error(t, ValidateTemplate("{{ bogus.X }}"))
	assert.Error(t, ValidateTemplate("{{ env }}"))
}

func TestExtractReferences(t *testing.T) {
	refs := ExtractReferences("{{ env.A }} {{ event.b.0.c }}")
	assert.Equal(t, []string{"env.A", "event.b.0.c"}, refs)
}
