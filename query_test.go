package client

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestBuildGetPosts(t *testing.T) {
	form := buildGetPosts(ListingTypeAll, SortTypeHot, 1)
	assert.Equal(t, ListingTypeAll, form.Type)
	assert.Equal(t, SortTypeHot, form.Sort)
	assert.Equal(t, 1, form.Page)
	assert.Equal(t, FetchLimit, form.Limit)

	// no bounds check: requesting past the end is valid
	form = buildGetPosts(ListingTypeSubscribed, SortTypeTopAll, 10000)
	assert.Equal(t, 10000, form.Page)
	assert.Equal(t, FetchLimit, form.Limit)
}
