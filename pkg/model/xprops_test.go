package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXProps_GetNormalized(t *testing.T) {
	x := NewXProps()
	x.Set("X-APPLE-SORT-ORDER", "7")
	x.Set("X-TASKSDAV-NOTE;LANG=en", "note")

	v, ok := x.GetNormalized("apple_sort_order")
	require.True(t, ok)
	assert.Equal(t, "7", v)

	// Суффикс параметров не мешает нормализованному поиску
	v, ok = x.GetNormalized("tasksdav_note")
	require.True(t, ok)
	assert.Equal(t, "note", v)

	_, ok = x.GetNormalized("missing_prop")
	assert.False(t, ok)
}

func TestXProps_ContainmentStrategies(t *testing.T) {
	x := NewXProps()
	x.Set("X-APPLE-SORT-ORDER", "7")
	x.Set("X-TEST-PROP-9a1b2c3d", "v")

	assert.True(t, x.HasExact("X-APPLE-SORT-ORDER"))
	assert.False(t, x.HasExact("x-apple-sort-order"))

	assert.True(t, x.HasFold("x-apple-sort-order"))
	assert.False(t, x.HasFold("x-apple-sort"))

	// Сервер перевел id-часть ключа в верхний регистр
	assert.True(t, x.HasNamespaceID("X-TEST-PROP-9A1B2C3D"))
	assert.False(t, x.HasNamespaceID("X-OTHER-PROP-9A1B2C3D"))
	assert.False(t, x.HasNamespaceID("X-TEST"))

	assert.True(t, x.Contains("x-test-prop-9A1B2C3D"))
	assert.False(t, x.Contains("X-NOPE"))
}

func TestXProps_GetFallsBackToFold(t *testing.T) {
	x := NewXProps()
	x.Set("X-Mixed-Case", "v")

	v, ok := x.Get("X-Mixed-Case")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	v, ok = x.Get("x-mixed-case")
	require.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestXProps_KeysKeepInsertionOrder(t *testing.T) {
	x := NewXProps()
	x.Set("X-B", "1")
	x.Set("X-A", "2")
	x.Set("X-B", "3") // перезапись не двигает ключ

	assert.Equal(t, []string{"X-B", "X-A"}, x.Keys())
	v, _ := x.Get("X-B")
	assert.Equal(t, "3", v)
	assert.Equal(t, 2, x.Len())
}
