package client

import (
	"fmt"
	"strconv"
	"strings"
)

// The home listing is addressable as `/home/type/<type>/sort/<sort>/page/<n>`
// with lowercase enum names, so browser back/forward restores an equivalent
// filter key.

func HomePath(listingType ListingType, sortType SortType, page int) string {
	typeStr := strings.ToLower(string(listingType))
	sortStr := strings.ToLower(string(sortType))
	return fmt.Sprintf("/home/type/%s/sort/%s/page/%d", typeStr, sortStr, page)
}

func ParseHomePath(path string) (ListingType, SortType, int, error) {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(parts) != 7 || parts[0] != "home" || parts[1] != "type" || parts[3] != "sort" || parts[5] != "page" {
		return "", "", 0, fmt.Errorf("not a home path: %s", path)
	}

	listingType, err := parseListingTypeSlug(parts[2])
	if err != nil {
		return "", "", 0, err
	}
	sortType, err := parseSortTypeSlug(parts[4])
	if err != nil {
		return "", "", 0, err
	}
	page, err := strconv.Atoi(parts[6])
	if err != nil {
		return "", "", 0, fmt.Errorf("bad page segment: %s", parts[6])
	}
	if page < 1 {
		return "", "", 0, fmt.Errorf("page must be >= 1: %d", page)
	}

	return listingType, sortType, page, nil
}

func parseListingTypeSlug(slug string) (ListingType, error) {
	for _, listingType := range ListingTypes() {
		if slug == strings.ToLower(string(listingType)) {
			return listingType, nil
		}
	}
	return "", fmt.Errorf("bad listing type segment: %s", slug)
}

func parseSortTypeSlug(slug string) (SortType, error) {
	for _, sortType := range SortTypes() {
		if slug == strings.ToLower(string(sortType)) {
			return sortType, nil
		}
	}
	return "", fmt.Errorf("bad sort segment: %s", slug)
}
