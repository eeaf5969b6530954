package model

import (
	"k8s.io/apimachinery/pkg/util/sets"
)

// Tags is the tag collection attached to a log entry or resource status.
// The set of implementations is closed: TagList is the primitive form and
// *TagSet is the structured form that flattens itself.
type Tags interface {
	// DataHash returns the tags as a fresh, plain list of strings.
	DataHash() []string
	tags()
}

// TagList is an ordered list of tag names.
type TagList []string

// DataHash returns a copy of the list; it is never nil.
func (l TagList) DataHash() []string {
	out := make([]string, len(l))
	copy(out, l)
	return out
}

func (TagList) tags() {}

// TagSet is an unordered, duplicate-free set of tag names.
type TagSet struct {
	set sets.Set[string]
}

// NewTagSet returns a set holding names.
func NewTagSet(names ...string) *TagSet {
	return &TagSet{set: sets.New(names...)}
}

// Tag adds names to the set.
func (s *TagSet) Tag(names ...string) {
	if s.set == nil {
		s.set = sets.New[string]()
	}
	s.set.Insert(names...)
}

// Tagged reports whether name is in the set.
func (s *TagSet) Tagged(name string) bool {
	return s != nil && s.set.Has(name)
}

// Len returns the number of tags.
func (s *TagSet) Len() int {
	if s == nil {
		return 0
	}
	return s.set.Len()
}

// DataHash returns the tags sorted; it is never nil.
func (s *TagSet) DataHash() []string {
	if s == nil || s.set.Len() == 0 {
		return []string{}
	}
	return sets.List(s.set)
}

func (*TagSet) tags() {}
