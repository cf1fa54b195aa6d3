package client

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestIdentityLoggedOut(t *testing.T) {
	identity := NewIdentity("")
	if identity.User() != nil {
		t.Fatalf("expected no user")
	}
	assert.Equal(t, "", identity.Jwt())

	listingType, sortType, page := DefaultFilterKey(identity)
	assert.Equal(t, ListingTypeAll, listingType)
	assert.Equal(t, SortTypeHot, sortType)
	assert.Equal(t, 1, page)
}

func TestIdentityFromJwt(t *testing.T) {
	jwt := testJwt(t, 42, "alice")

	identity := NewIdentity(jwt)
	user := identity.User()
	assert.NotEqual(t, nil, user)
	assert.Equal(t, 42, user.Id)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, jwt, identity.Jwt())

	listingType, _, _ := DefaultFilterKey(identity)
	assert.Equal(t, ListingTypeSubscribed, listingType)

	identity.Clear()
	if identity.User() != nil {
		t.Fatalf("expected logout to clear the user")
	}
}

func TestIdentityBadJwt(t *testing.T) {
	identity := NewIdentity("")
	err := identity.SetJwt("not a jwt")
	assert.NotEqual(t, nil, err)
	if identity.User() != nil {
		t.Fatalf("expected no user after a bad jwt")
	}
}
