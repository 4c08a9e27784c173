package domain

import "slices"

// Favorites is the contract UI consumers depend on for a visitor's favorites.
type Favorites interface {
	IsFavorite(id int) bool
	ToggleFavorite(id int)
	AddFavorite(id int)
	RemoveFavorite(id int)
}

// FavoriteSet is the set of product ids a browser profile marked as favorite.
type FavoriteSet map[int]struct{}

// NewFavoriteSet builds a set from ids, collapsing duplicates
func NewFavoriteSet(ids ...int) FavoriteSet {
	s := make(FavoriteSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s FavoriteSet) Contains(id int) bool {
	_, ok := s[id]
	return ok
}

func (s FavoriteSet) Len() int {
	return len(s)
}

// IDs returns the members in ascending order
func (s FavoriteSet) IDs() []int {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s FavoriteSet) Clone() FavoriteSet {
	c := make(FavoriteSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// Equal reports whether both sets have the same members
func (s FavoriteSet) Equal(other FavoriteSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Contains(id) {
			return false
		}
	}
	return true
}
