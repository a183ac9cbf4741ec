package physical

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/value"
)

// hashIndex maps canonical key encodings to lists of ordinals. Buckets are
// selected by xxhash and resolved by comparing the full key.
type hashIndex struct {
	buckets map[uint64][]*entry
	entries int
}

type entry struct {
	key      string
	ordinals []int
}

func newHashIndex() *hashIndex {
	return &hashIndex{buckets: make(map[uint64][]*entry)}
}

func (h *hashIndex) find(key []byte) *entry {
	for _, e := range h.buckets[xxhash.Sum64(key)] {
		if e.key == string(key) {
			return e
		}
	}
	return nil
}

// add appends ordinal under key
func (h *hashIndex) add(key []byte, ordinal int) {
	if e := h.find(key); e != nil {
		e.ordinals = append(e.ordinals, ordinal)
		return
	}
	sum := xxhash.Sum64(key)
	h.buckets[sum] = append(h.buckets[sum], &entry{key: string(key), ordinals: []int{ordinal}})
	h.entries++
}

// get returns the ordinals stored under key
func (h *hashIndex) get(key []byte) []int {
	if e := h.find(key); e != nil {
		return e.ordinals
	}
	return nil
}

// size returns the number of distinct keys
func (h *hashIndex) size() int { return h.entries }

// groupKeys evaluates one key group over row and returns every composite key
// it produces. A multi-valued component contributes one key per element; an
// absent component yields no key, so the row can never match on this group.
func groupKeys(group int, exprs []expression.Expression, row expression.Row) ([][]byte, error) {
	keys := [][]byte{binary.AppendUvarint(nil, uint64(group))}
	for _, e := range exprs {
		v, err := e.ValueOf(row)
		if err != nil {
			return nil, err
		}
		elems := keyElements(v)
		if len(elems) == 0 {
			return nil, nil
		}
		next := make([][]byte, 0, len(keys)*len(elems))
		for _, k := range keys {
			for _, el := range elems {
				next = append(next, value.AppendKey(append([]byte(nil), k...), el))
			}
		}
		keys = next
	}
	return keys, nil
}

// keyElements returns the present values a key component matches on
func keyElements(v value.ExprValue) []value.ExprValue {
	if value.IsAbsent(v) {
		return nil
	}
	c, ok := v.(value.Collection)
	if !ok {
		return []value.ExprValue{v}
	}
	out := make([]value.ExprValue, 0, len(c))
	for _, el := range c {
		if !value.IsAbsent(el) {
			out = append(out, el)
		}
	}
	return out
}
