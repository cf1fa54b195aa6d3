package client

// application-wide page size for listings
const FetchLimit = 10

// how many trending communities the home sidebar asks for
const TrendingLimit = 6

// buildGetPosts derives the fetch request for one filter key. It is called
// exactly once per filter-key change and once at mount, with no memoization:
// every change issues a fresh request. There is no page-bounds check against
// a total count; requesting past the end is valid and returns an empty list.
func buildGetPosts(listingType ListingType, sortType SortType, page int) *GetPostsForm {
	return &GetPostsForm{
		Type:  listingType,
		Sort:  sortType,
		Page:  page,
		Limit: FetchLimit,
	}
}
