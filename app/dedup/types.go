package dedup

import (
	"context"
	"sort"
)

// Key is the pair of dedup keys derived from one item.
type Key struct {
	Link  string
	Title string
}

// Store loads and persists the set of accepted keys between runs.
type Store interface {
	Load(ctx context.Context) (*Set, error)
	Persist(ctx context.Context, set *Set) error
}

// Set holds the keys of every accepted item. It is not safe for concurrent
// use; the pipeline is its only writer.
type Set struct {
	links  map[string]struct{}
	titles map[string]struct{}
}

func NewSet() *Set {
	return &Set{
		links:  make(map[string]struct{}),
		titles: make(map[string]struct{}),
	}
}

func NewSetFrom(links, titles []string) *Set {
	set := NewSet()
	for _, link := range links {
		set.links[link] = struct{}{}
	}
	for _, title := range titles {
		set.titles[title] = struct{}{}
	}
	return set
}

// IsDuplicate reports whether either key was seen before.
func (s *Set) IsDuplicate(key Key) bool {
	if _, ok := s.links[key.Link]; ok {
		return true
	}
	_, ok := s.titles[key.Title]
	return ok
}

func (s *Set) Record(key Key) {
	s.links[key.Link] = struct{}{}
	s.titles[key.Title] = struct{}{}
}

func (s *Set) Links() []string {
	return sortedKeys(s.links)
}

func (s *Set) Titles() []string {
	return sortedKeys(s.titles)
}

func (s *Set) Len() (links int, titles int) {
	return len(s.links), len(s.titles)
}

func (s *Set) Clone() *Set {
	return NewSetFrom(s.Links(), s.Titles())
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
