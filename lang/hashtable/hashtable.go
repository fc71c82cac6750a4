// Package hashtable implements the open-addressed, linear-probing map
// used for the VM's globals table, following spec.md §4.6's exact probing/resize/tombstone contract.
//
// github.com/dolthub/swiss (wired elsewhere, see lang/compiler) is not
// a fit here: its SIMD group-probing layout has no exposed notion of a
// "tombstone bucket distinguishable from empty", which this table's
// delete contract (value reset to a default sentinel, bucket state
// preserved as neither Empty nor Occupied) depends on. This package is
// therefore a direct, from-scratch realization of the teacher's own
// open-addressing style seen in lang/machine/universe.go (a plain Go
// map used for globals) generalized to linear probing with FNV-1a, the
// way spec.md §4.6 demands it.
package hashtable

import "hash/fnv"

type bucketState uint8

const (
	empty bucketState = iota
	occupied
	tombstone
)

type bucket struct {
	state bucketState
	key   string
	value any
}

// Table is an open-addressed, linear-probed hash map keyed by string.
// Capacity always doubles (starting at 4) once occupancy — counting
// tombstones, which are not reclaimed until a resize — would exceed a
// 0.75 load factor.
type Table struct {
	buckets  []bucket
	occupied int // live entries + tombstones, drives the load-factor check
	count    int // live entries only
}

const initialCapacity = 4
const maxLoadFactor = 0.75

// New returns an empty table with the spec's initial capacity of 4.
func New() *Table {
	return &Table{buckets: make([]bucket, initialCapacity)}
}

// Len returns the number of live (non-deleted) entries.
func (t *Table) Len() int { return t.count }

func hashKey(key string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(key))
	return h.Sum64()
}

// find returns the index of the bucket matching key if present, or the
// first empty/tombstone bucket on the probe chain where key could be
// inserted, plus whether key was found.
func (t *Table) find(key string) (int, bool) {
	n := len(t.buckets)
	idx := int(hashKey(key) % uint64(n))
	firstTombstone := -1
	for i := 0; i < n; i++ {
		b := &t.buckets[idx]
		switch b.state {
		case empty:
			if firstTombstone != -1 {
				return firstTombstone, false
			}
			return idx, false
		case tombstone:
			if firstTombstone == -1 {
				firstTombstone = idx
			}
		case occupied:
			if b.key == key {
				return idx, true
			}
		}
		idx = (idx + 1) % n
	}
	if firstTombstone != -1 {
		return firstTombstone, false
	}
	return -1, false
}

// Get looks up key, returning its value and whether it was present.
func (t *Table) Get(key string) (any, bool) {
	idx, found := t.find(key)
	if !found {
		return nil, false
	}
	return t.buckets[idx].value, true
}

// Insert sets key to value, growing the table first if doing so would
// push occupancy (live entries plus tombstones) over the 0.75 load
// factor. It returns true iff key was not already present.
func (t *Table) Insert(key string, value any) bool {
	if float64(t.occupied+1)/float64(len(t.buckets)) > maxLoadFactor {
		t.grow()
	}
	idx, _ := t.find(key)
	b := &t.buckets[idx]
	isNew := b.state != occupied
	if b.state == empty {
		t.occupied++
	}
	b.state = occupied
	b.key = key
	b.value = value
	if isNew {
		t.count++
	}
	return isNew
}

// Delete resets key's slot to the tombstone state (value reset to nil,
// the table's default sentinel), per spec.md §4.6/§9. Reports whether
// key was present.
func (t *Table) Delete(key string) bool {
	idx, found := t.find(key)
	if !found {
		return false
	}
	b := &t.buckets[idx]
	b.state = tombstone
	b.value = nil
	t.count--
	return true
}

// grow doubles the backing array and re-inserts every live entry by
// probing into the fresh array. Tombstones are dropped (not carried
// across a resize), per spec.md §4.6.
func (t *Table) grow() {
	old := t.buckets
	t.buckets = make([]bucket, len(old)*2)
	t.occupied = 0
	t.count = 0
	for _, b := range old {
		if b.state == occupied {
			t.Insert(b.key, b.value)
		}
	}
}

// Each calls fn once per live entry, in bucket order. fn must not
// mutate t.
func (t *Table) Each(fn func(key string, value any)) {
	for _, b := range t.buckets {
		if b.state == occupied {
			fn(b.key, b.value)
		}
	}
}
