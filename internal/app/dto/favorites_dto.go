package dto

// FavoritesResponse lists the visitor's favorite product ids
type FavoritesResponse struct {
	Favorites []int `json:"favorites"`
}

// ToggleFavoriteResponse is returned after a single-id mutation
type ToggleFavoriteResponse struct {
	ID        int   `json:"id"`
	Favorite  bool  `json:"favorite"`
	Favorites []int `json:"favorites"`
}
