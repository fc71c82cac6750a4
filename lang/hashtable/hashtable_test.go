package hashtable_test

import (
	"fmt"
	"testing"

	"github.com/mna/asterisk/lang/hashtable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertGet(t *testing.T) {
	tb := hashtable.New()
	assert.True(t, tb.Insert("a", 1))
	assert.False(t, tb.Insert("a", 2))

	v, ok := tb.Get("a")
	require.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = tb.Get("missing")
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	tb := hashtable.New()
	tb.Insert("a", 1)
	assert.True(t, tb.Delete("a"))
	assert.False(t, tb.Delete("a"))

	_, ok := tb.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, tb.Len())
}

func TestReinsertAfterDeleteReusesTombstone(t *testing.T) {
	tb := hashtable.New()
	tb.Insert("a", 1)
	tb.Delete("a")
	assert.True(t, tb.Insert("a", 99))

	v, ok := tb.Get("a")
	require.True(t, ok)
	assert.Equal(t, 99, v)
}

func TestGrowthPreservesAllEntries(t *testing.T) {
	tb := hashtable.New()
	const n = 200
	for i := 0; i < n; i++ {
		tb.Insert(fmt.Sprintf("key%d", i), i)
	}
	assert.Equal(t, n, tb.Len())
	for i := 0; i < n; i++ {
		v, ok := tb.Get(fmt.Sprintf("key%d", i))
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
}

func TestEachVisitsEveryLiveEntry(t *testing.T) {
	tb := hashtable.New()
	want := map[string]int{"a": 1, "b": 2, "c": 3}
	for k, v := range want {
		tb.Insert(k, v)
	}
	tb.Insert("d", 4)
	tb.Delete("d")

	got := map[string]int{}
	tb.Each(func(k string, v any) { got[k] = v.(int) })
	assert.Equal(t, want, got)
}
