package client

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestCreateCommunityFlow(t *testing.T) {
	sender := &fakeSender{}
	identity := NewIdentity(testJwt(t, 42, "alice"))
	dispatcher := NewDispatcher()

	urls := []string{}
	alerts := []string{}
	store := NewCreateCommunityStore(
		NewService(sender, identity),
		dispatcher,
		&CreateCommunityEffects{
			PushUrl: func(path string) {
				urls = append(urls, path)
			},
			Alert: func(errorMessage string) {
				alerts = append(alerts, errorMessage)
			},
		},
	)
	defer store.Unmount()

	store.Mount()
	assert.Equal(t, []UserOperation{OpListCategories}, sender.ops())

	dispatcher.Dispatch(&Message{
		Op: OpListCategories,
		Payload: &ListCategoriesResponse{
			Categories: []Category{{Id: 1, Name: "discussion"}},
		},
	})
	assert.Equal(t, 1, len(store.State().Categories))

	sender.requests = nil
	store.Create(&CommunityForm{
		Name:       "news",
		Title:      "News",
		CategoryId: 1,
	})
	assert.Equal(t, true, store.State().Loading)
	assert.Equal(t, []UserOperation{OpCreateCommunity}, sender.ops())

	communityForm := sender.requests[0].form.(*CommunityForm)
	assert.NotEqual(t, "", communityForm.Auth)

	dispatcher.Dispatch(&Message{
		Op: OpCreateCommunity,
		Payload: &CommunityResponse{
			Community: Community{Id: 9, Name: "news"},
		},
	})
	assert.Equal(t, false, store.State().Loading)
	assert.Equal(t, []string{"/c/news"}, urls)
	assert.Equal(t, 0, len(alerts))
}

func TestCreateCommunityError(t *testing.T) {
	sender := &fakeSender{}
	dispatcher := NewDispatcher()

	alerts := []string{}
	store := NewCreateCommunityStore(
		NewService(sender, NewIdentity("")),
		dispatcher,
		&CreateCommunityEffects{
			Alert: func(errorMessage string) {
				alerts = append(alerts, errorMessage)
			},
		},
	)
	defer store.Unmount()

	store.Create(&CommunityForm{Name: "taken"})
	dispatcher.Dispatch(&Message{
		Error: "community_already_exists",
	})

	assert.Equal(t, false, store.State().Loading)
	assert.Equal(t, []string{"community_already_exists"}, alerts)
}
