// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package m3u

// GroupIndex buckets entries by group-title. Both the bucket order and the
// order within a bucket follow insertion.
type GroupIndex struct {
	order   []string
	buckets map[string][]Attributes
}

// Bucket is one group-title and its entries.
type Bucket struct {
	Title   string
	Entries []Attributes
}

func NewGroupIndex() *GroupIndex {
	return &GroupIndex{buckets: make(map[string][]Attributes)}
}

// Add appends a to the bucket for title.
func (g *GroupIndex) Add(title string, a Attributes) {
	if _, ok := g.buckets[title]; !ok {
		g.order = append(g.order, title)
	}
	g.buckets[title] = append(g.buckets[title], a)
}

// Titles returns group titles in first-seen order.
func (g *GroupIndex) Titles() []string {
	return append([]string(nil), g.order...)
}

// Entries returns the bucket for title, nil if there is none.
func (g *GroupIndex) Entries(title string) []Attributes {
	return g.buckets[title]
}

// Len is the number of buckets.
func (g *GroupIndex) Len() int {
	return len(g.order)
}

// Buckets returns all buckets in order, for templates.
func (g *GroupIndex) Buckets() []Bucket {
	out := make([]Bucket, 0, len(g.order))
	for _, t := range g.order {
		out = append(out, Bucket{Title: t, Entries: g.buckets[t]})
	}
	return out
}
