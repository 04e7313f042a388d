// Package delta implements the run-length diff format the game server uses
// for the map and city arrays.
//
// A diff alternates two kinds of runs until it is exhausted:
//
//	<number of elements kept from the old array>
//	<number of replaced elements> <the replacement elements...>
//
// Patching [1, 1, 3] onto [0, 0] yields [0, 3]; patching [0, 1, 2, 1] onto
// [0, 0] yields [2, 0].
package delta

import "fmt"

// Apply returns a new array built by patching diff onto old. It is pure:
// neither argument is modified. Apply panics when diff keeps more elements
// than old holds or announces more replacements than it carries.
func Apply(old, diff []int) []int {
	out := make([]int, 0, len(old))
	cursor := 0
	for cursor < len(diff) {
		if keep := diff[cursor]; keep > 0 {
			start := len(out)
			if start+keep > len(old) {
				panic(fmt.Sprintf("delta: keeping %d elements at %d of a %d element array", keep, start, len(old)))
			}
			out = append(out, old[start:start+keep]...)
		}
		cursor++
		if cursor < len(diff) && diff[cursor] > 0 {
			n := diff[cursor]
			if cursor+1+n > len(diff) {
				panic(fmt.Sprintf("delta: %d replacements announced, %d present", n, len(diff)-cursor-1))
			}
			out = append(out, diff[cursor+1:cursor+1+n]...)
			cursor += n
		}
		cursor++
	}
	return out
}

// Diff encodes next as a diff against old, such that Apply(old, Diff(old,
// next)) equals next. Arrays of different lengths are supported.
func Diff(old, next []int) []int {
	var out []int
	i := 0
	for i < len(next) {
		keep := 0
		for i+keep < len(next) && i+keep < len(old) && old[i+keep] == next[i+keep] {
			keep++
		}
		i += keep

		replaced := 0
		for i+replaced < len(next) && (i+replaced >= len(old) || old[i+replaced] != next[i+replaced]) {
			replaced++
		}
		out = append(out, keep, replaced)
		out = append(out, next[i:i+replaced]...)
		i += replaced
	}
	return out
}
