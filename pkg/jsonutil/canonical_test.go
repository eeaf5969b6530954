package jsonutil_test

import (
	"testing"

	"github.com/jvs-project/reportstore/pkg/jsonutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalMarshal_SortedKeys(t *testing.T) {
	input := map[string]any{
		"zebra": 1,
		"alpha": 2,
		"mid":   3,
	}
	out, err := jsonutil.CanonicalMarshal(input)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"mid":3,"zebra":1}`, string(out))
}

func TestCanonicalMarshal_Nested(t *testing.T) {
	input := map[string]any{
		"b": map[string]any{"z": 1, "a": 2},
		"a": []any{map[string]any{"y": true, "x": nil}},
	}
	out, err := jsonutil.CanonicalMarshal(input)
	require.NoError(t, err)
	assert.Equal(t, `{"a":[{"x":null,"y":true}],"b":{"a":2,"z":1}}`, string(out))
}

func TestCanonicalMarshal_LargeIntegersKeepPrecision(t *testing.T) {
	input := map[string]any{"n": int64(9007199254740993), "f": 0.25}
	out, err := jsonutil.CanonicalMarshal(input)
	require.NoError(t, err)
	assert.Equal(t, `{"f":0.25,"n":9007199254740993}`, string(out))
}

func TestCanonicalMarshal_NoHTMLEscaping(t *testing.T) {
	input := map[string]any{"message": "File[/etc/motd] <content> & more"}
	out, err := jsonutil.CanonicalMarshal(input)
	require.NoError(t, err)
	assert.Equal(t, `{"message":"File[/etc/motd] <content> & more"}`, string(out))
}

func TestCanonicalMarshal_Unicode(t *testing.T) {
	input := map[string]any{"名前": "テスト"}
	out, err := jsonutil.CanonicalMarshal(input)
	require.NoError(t, err)
	assert.Equal(t, `{"名前":"テスト"}`, string(out))
}

func TestCanonicalMarshal_StructSortsFields(t *testing.T) {
	type sample struct {
		Zebra int    `json:"zebra"`
		Alpha string `json:"alpha"`
	}
	out, err := jsonutil.CanonicalMarshal(sample{Zebra: 1, Alpha: "a"})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":"a","zebra":1}`, string(out))
}

func TestCanonicalMarshal_Deterministic(t *testing.T) {
	input := map[string]any{"c": 1, "a": map[string]any{"q": 1, "b": 2}, "b": []any{"x"}}
	first, err := jsonutil.CanonicalMarshal(input)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := jsonutil.CanonicalMarshal(input)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCanonicalMarshal_Unsupported(t *testing.T) {
	_, err := jsonutil.CanonicalMarshal(map[string]any{"ch": make(chan int)})
	assert.Error(t, err)
}
