package planner

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// visitedSet remembers clear chains already queued. Keys are an xxhash of the
// chain's fields in order; chains sharing a hash are compared field by field.
type visitedSet struct {
	buckets map[uint64][][]Clear
	size    int
}

func newVisitedSet() *visitedSet {
	return &visitedSet{buckets: make(map[uint64][][]Clear)}
}

// add records clears and reports whether it was new.
func (v *visitedSet) add(clears []Clear) bool {
	h := hashClears(clears)
	for _, seen := range v.buckets[h] {
		if equalClears(seen, clears) {
			return false
		}
	}
	v.buckets[h] = append(v.buckets[h], clears)
	v.size++
	return true
}

func (v *visitedSet) len() int { return v.size }

func hashClears(clears []Clear) uint64 {
	d := xxhash.New()
	var buf [8]byte
	put := func(n int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(n))
		_, _ = d.Write(buf[:])
	}
	put(len(clears))
	for _, c := range clears {
		put(c.Turn)
		put(c.MoveCap)
		put(c.Gain)
		put(len(c.Path))
		for _, step := range c.Path {
			put(step)
		}
	}
	return d.Sum64()
}

func equalClears(a, b []Clear) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Turn != b[i].Turn || a[i].MoveCap != b[i].MoveCap || a[i].Gain != b[i].Gain {
			return false
		}
		if len(a[i].Path) != len(b[i].Path) {
			return false
		}
		for k := range a[i].Path {
			if a[i].Path[k] != b[i].Path[k] {
				return false
			}
		}
	}
	return true
}
