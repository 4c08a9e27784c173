package dto

import (
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{raw: "", ok: false},
		{raw: "abc", ok: false},
		{raw: ".", ok: false},
		{raw: "NaN", ok: false},
		{raw: "10", want: 10, ok: true},
		{raw: " 10abc", want: 10, ok: true},
		{raw: "12.5.3", want: 12.5, ok: true},
		{raw: ".5", want: 0.5, ok: true},
		{raw: "-3", want: -3, ok: true},
		{raw: "1e2x", want: 100, ok: true},
		{raw: "7e", want: 7, ok: true},
		{raw: "0x10", want: 0, ok: true},
		{raw: "Infinity", want: math.Inf(1), ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := parsePrice(tt.raw)
			if !tt.ok {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestSearchRequest_Values(t *testing.T) {
	req := SearchRequestFromQuery(url.Values{
		"q":        {" denim "},
		"minPrice": {"20"},
		"maxPrice": {"oops"},
		"sort":     {SortNewest},
	})

	assert.Equal(t, "denim", req.Query)
	assert.Nil(t, req.MaxPrice)
	assert.Equal(t, "minPrice=20&q=denim&sort=newest", req.Values().Encode())
}
