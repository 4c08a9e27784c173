package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProduct_Validate(t *testing.T) {
	valid := Product{ID: 1, Title: "Denim Jacket", Price: 45, Category: "outerwear", Images: []string{"/a.jpg"}}
	assert.NoError(t, valid.Validate())

	noID := valid
	noID.ID = 0
	assert.ErrorIs(t, noID.Validate(), ErrInvalidProductID)

	noTitle := valid
	noTitle.Title = "  "
	assert.ErrorIs(t, noTitle.Validate(), ErrInvalidProductTitle)

	negative := valid
	negative.Price = -1
	assert.ErrorIs(t, negative.Validate(), ErrInvalidProductPrice)
}

func TestProduct_MatchesAnyTerm(t *testing.T) {
	p := Product{Title: "Vintage Denim Jacket", Brand: "Levi's", Color: "Blue", Category: "Outerwear"}

	assert.True(t, p.MatchesAnyTerm([]string{"denim"}))
	assert.True(t, p.MatchesAnyTerm([]string{"silk", "blue"}))
	assert.True(t, p.MatchesAnyTerm([]string{"outerwear"}))
	assert.False(t, p.MatchesAnyTerm([]string{"silk", "red"}))
	assert.False(t, p.MatchesAnyTerm(nil))
}

func TestProduct_CategorySlug(t *testing.T) {
	p := Product{Category: "One-Piece"}
	assert.Equal(t, "one-piece", p.CategorySlug())
}
