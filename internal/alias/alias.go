// Package alias implements the alias store and the alias-expanding
// tokenizer layer that sits between the lexer and the grammar parser.
package alias

import "sort"

// Store maps alias names to their replacement text.
type Store struct {
	byName map[string]string
}

// NewStore creates an empty alias store.
func NewStore() *Store {
	return &Store{byName: make(map[string]string)}
}

// Get looks up an alias by name.
func (s *Store) Get(name string) (string, bool) {
	v, ok := s.byName[name]
	return v, ok
}

// Define sets or replaces an alias.
func (s *Store) Define(name, text string) { s.byName[name] = text }

// Unset removes an alias.
func (s *Store) Unset(name string) { delete(s.byName, name) }

// Names returns every alias name, sorted.
func (s *Store) Names() []string {
	out := make([]string, 0, len(s.byName))
	for n := range s.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Clone deep-copies the store.
func (s *Store) Clone() *Store {
	out := NewStore()
	for k, v := range s.byName {
		out.byName[k] = v
	}
	return out
}
