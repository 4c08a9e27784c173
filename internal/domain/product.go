package domain

import (
	"errors"
	"strings"

	"github.com/gosimple/slug"
)

var (
	ErrInvalidProductID    = errors.New("product id must be positive")
	ErrInvalidProductTitle = errors.New("product title is required")
	ErrInvalidProductPrice = errors.New("product price must not be negative")
)

// Product represents a listing in the read-only catalog
type Product struct {
	ID          int      `json:"id" validate:"gt=0"`
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Price       float64  `json:"price" validate:"gte=0"`
	Seller      string   `json:"seller"`
	Category    string   `json:"category" validate:"required"`
	Condition   string   `json:"condition"`
	Brand       string   `json:"brand"`
	Size        string   `json:"size"`
	Color       string   `json:"color"`
	Images      []string `json:"images" validate:"min=1,dive,required"`
}

// Validate performs business validation on the product
func (p *Product) Validate() error {
	if p.ID <= 0 {
		return ErrInvalidProductID
	}
	if strings.TrimSpace(p.Title) == "" {
		return ErrInvalidProductTitle
	}
	if p.Price < 0 {
		return ErrInvalidProductPrice
	}
	return nil
}

// CategorySlug returns the normalized category used in links and filters
func (p *Product) CategorySlug() string {
	return slug.Make(p.Category)
}

// SearchText is the lower-cased text a free-text query is matched against
func (p *Product) SearchText() string {
	return strings.ToLower(strings.Join([]string{
		p.Title, p.Description, p.Brand, p.Color, p.Category,
	}, " "))
}

// MatchesAnyTerm reports whether any of the terms occurs in the product's
// searchable text. Terms are expected to be lower-cased.
func (p *Product) MatchesAnyTerm(terms []string) bool {
	text := p.SearchText()
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// PrimaryImage returns the first image or an empty string
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
