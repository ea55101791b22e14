package agon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectDataKeepsOnlyNamedFields(t *testing.T) {
	v, err := ParseJSON([]byte(`{"id":1,"name":"ada","secret":"x"}`))
	require.NoError(t, err)
	got := ProjectData([]Value{v}, []string{"id", "name"})
	require.Len(t, got, 1)
	_, hasSecret := got[0].Obj.Get("secret")
	assert.False(t, hasSecret)
	name, _ := got[0].Obj.Get("name")
	assert.True(t, ValueEqual(Str("ada"), name))
}

func TestProjectDataDeeperPathWinsOverBareParent(t *testing.T) {
	v, err := ParseJSON([]byte(`{"a":{"b":1,"c":2}}`))
	require.NoError(t, err)
	got := ProjectData([]Value{v}, []string{"a", "a.b"})
	a, ok := got[0].Obj.Get("a")
	require.True(t, ok)
	_, hasC := a.Obj.Get("c")
	assert.False(t, hasC, "a.b being requested should override the bare \"a\" request")
	b, hasB := a.Obj.Get("b")
	require.True(t, hasB)
	assert.True(t, ValueEqual(Int(1), b))
}

func TestProjectDataAppliesTreeToEveryArrayElement(t *testing.T) {
	v, err := ParseJSON([]byte(`{"items":[{"id":1,"x":"drop"},{"id":2,"x":"drop"}]}`))
	require.NoError(t, err)
	got := ProjectData([]Value{v}, []string{"items.id"})
	items, ok := got[0].Obj.Get("items")
	require.True(t, ok)
	require.Len(t, items.Array, 2)
	for _, item := range items.Array {
		_, hasX := item.Obj.Get("x")
		assert.False(t, hasX)
		_, hasID := item.Obj.Get("id")
		assert.True(t, hasID)
	}
}

func TestProjectDataPreservesNonObjectArrayElements(t *testing.T) {
	v, err := ParseJSON([]byte(`{"items":[1,2,"x"],"keep":"y"}`))
	require.NoError(t, err)
	got := ProjectData([]Value{v}, []string{"items", "keep"})
	items, ok := got[0].Obj.Get("items")
	require.True(t, ok)
	assert.True(t, ValueEqual(Array([]Value{Int(1), Int(2), Str("x")}), items))
}
