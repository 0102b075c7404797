// Package tally counts experiment outputs and orders them for reporting.
//
// Entries are ordered by descending count. Outputs with equal counts keep the
// order in which they were first observed, so a report built twice from the
// same table is identical.
package tally

import "sort"

// Entry is one row of the frequency table.
type Entry struct {
	Output int64 `json:"output" msgpack:"output"`
	Count  int   `json:"count" msgpack:"count"`
}

// Table maps each distinct output to the number of trials that produced it.
// It is not safe for concurrent use.
type Table struct {
	counts map[int64]int
	order  []int64
	total  int
}

// New returns an empty table.
func New() *Table {
	return &Table{counts: make(map[int64]int)}
}

// FromOutputs builds a table from outputs in a single pass.
func FromOutputs(outputs []int64) *Table {
	t := New()
	for _, v := range outputs {
		t.Add(v)
	}
	return t
}

// Add records one occurrence of v.
func (t *Table) Add(v int64) {
	if _, seen := t.counts[v]; !seen {
		t.order = append(t.order, v)
	}
	t.counts[v]++
	t.total++
}

// Count returns how many times v was recorded.
func (t *Table) Count(v int64) int { return t.counts[v] }

// Total returns the number of recorded outputs.
func (t *Table) Total() int { return t.total }

// Len returns the number of distinct outputs.
func (t *Table) Len() int { return len(t.order) }

// Entries returns the rows sorted by descending count, ties in
// first-appearance order. The returned slice is a fresh copy.
func (t *Table) Entries() []Entry {
	entries := make([]Entry, len(t.order))
	for i, v := range t.order {
		entries[i] = Entry{Output: v, Count: t.counts[v]}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	return entries
}
