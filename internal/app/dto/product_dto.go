package dto

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/mrops-br/restyle-storefront/internal/domain"
)

// Sort orders accepted by SearchRequest.Sort
const (
	SortRelevance = ""
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortNewest    = "newest"
)

// SearchRequest holds listing filters. Unparsable prices are left nil.
type SearchRequest struct {
	Query    string   `json:"q,omitempty"`
	Category string   `json:"category,omitempty"`
	MinPrice *float64 `json:"minPrice,omitempty"`
	MaxPrice *float64 `json:"maxPrice,omitempty"`
	Sort     string   `json:"sort,omitempty"`
}

// SearchRequestFromQuery reads filters from URL query parameters
func SearchRequestFromQuery(values url.Values) SearchRequest {
	return SearchRequest{
		Query:    strings.TrimSpace(values.Get("q")),
		Category: strings.TrimSpace(values.Get("category")),
		MinPrice: parsePrice(values.Get("minPrice")),
		MaxPrice: parsePrice(values.Get("maxPrice")),
		Sort:     values.Get("sort"),
	}
}

// Terms returns the lower-cased whitespace separated query terms
func (r SearchRequest) Terms() []string {
	return strings.Fields(strings.ToLower(r.Query))
}

// Values encodes the request back into query parameters, dropping empty ones
func (r SearchRequest) Values() url.Values {
	v := url.Values{}
	if r.Query != "" {
		v.Set("q", r.Query)
	}
	if r.Category != "" {
		v.Set("category", r.Category)
	}
	if r.MinPrice != nil {
		v.Set("minPrice", strconv.FormatFloat(*r.MinPrice, 'f', -1, 64))
	}
	if r.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatFloat(*r.MaxPrice, 'f', -1, 64))
	}
	if r.Sort != "" {
		v.Set("sort", r.Sort)
	}
	return v
}

// parsePrice reads the longest leading decimal number, so "10abc" is 10
// and "abc" is no filter at all.
func parsePrice(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	end := leadingNumber(raw)
	if end == 0 {
		return nil
	}
	f, err := strconv.ParseFloat(raw[:end], 64)
	if (err != nil && !errors.Is(err, strconv.ErrRange)) || math.IsNaN(f) {
		return nil
	}
	return &f
}

// leadingNumber returns the length of the decimal literal at the start of s
func leadingNumber(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		return i + len("Infinity")
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}

	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			end = k
		}
	}
	return end
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// ProductResponse represents the product response
type ProductResponse struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Seller      string   `json:"seller"`
	Category    string   `json:"category"`
	Condition   string   `json:"condition"`
	Brand       string   `json:"brand"`
	Size        string   `json:"size"`
	Color       string   `json:"color"`
	Images      []string `json:"images"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *domain.Product) *ProductResponse {
	return &ProductResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Seller:      p.Seller,
		Category:    p.Category,
		Condition:   p.Condition,
		Brand:       p.Brand,
		Size:        p.Size,
		Color:       p.Color,
		Images:      p.Images,
	}
}

// ToProductResponseList converts a list of domain Products to ProductResponse list
func ToProductResponseList(products []*domain.Product) []*ProductResponse {
	responses := make([]*ProductResponse, len(products))
	for i, p := range products {
		responses[i] = ToProductResponse(p)
	}
	return responses
}

// HomeSections groups the product lanes shown on the home page
type HomeSections struct {
	Featured    []*domain.Product
	NewArrivals []*domain.Product
	Popular     []*domain.Product
}
