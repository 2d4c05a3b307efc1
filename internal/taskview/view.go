// Package taskview holds the board presentation rules shared by the terminal
// client and the server-rendered pages: search filtering, ordering by
// creation time, and grouping into status columns.
package taskview

import (
	"sort"
	"strings"
	"time"
)

type SortMode string

const (
	SortRecent SortMode = "recent"
	SortOldest SortMode = "oldest"
)

func ParseSortMode(s string) (SortMode, bool) {
	switch SortMode(strings.ToLower(strings.TrimSpace(s))) {
	case SortRecent:
		return SortRecent, true
	case SortOldest:
		return SortOldest, true
	}
	return "", false
}

// Item is the part of a task the view rules read.
type Item interface {
	// SearchText returns the fields a search term is matched against.
	SearchText() []string
	SortTime() time.Time
	StatusKey() string
}

// Filter keeps items with a SearchText field containing term, ignoring
// case. An empty term keeps everything in the original order. The result is
// a new slice.
func Filter[T Item](items []T, term string) []T {
	out := make([]T, 0, len(items))
	needle := strings.ToLower(term)
	for _, it := range items {
		if needle == "" || matches(it, needle) {
			out = append(out, it)
		}
	}
	return out
}

func matches(it Item, needle string) bool {
	for _, f := range it.SearchText() {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// Sort orders items by creation time, newest first for SortRecent and oldest
// first otherwise. Ties keep their input order. The result is a new slice.
func Sort[T Item](items []T, mode SortMode) []T {
	out := make([]T, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		if mode == SortRecent {
			return out[i].SortTime().After(out[j].SortTime())
		}
		return out[i].SortTime().Before(out[j].SortTime())
	})
	return out
}

// Group is one column of a partition.
type Group[T Item] struct {
	Key   string
	Items []T
}

// Partition returns one group per key, in keys order, keeping the input
// order within each group. Items whose status is not among keys are dropped.
func Partition[T Item](items []T, keys []string) []Group[T] {
	groups := make([]Group[T], len(keys))
	idx := make(map[string]int, len(keys))
	for i, k := range keys {
		groups[i] = Group[T]{Key: k, Items: []T{}}
		idx[k] = i
	}
	for _, it := range items {
		if i, ok := idx[it.StatusKey()]; ok {
			groups[i].Items = append(groups[i].Items, it)
		}
	}
	return groups
}

// Board runs Filter, Sort and Partition in that order.
func Board[T Item](items []T, term string, mode SortMode, keys []string) []Group[T] {
	return Partition(Sort(Filter(items, term), mode), keys)
}
