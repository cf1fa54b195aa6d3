package client

import (
	"fmt"
	"slices"
	"sync"
)

type CreateCommunityState struct {
	Categories []Category
	Loading    bool
}

func applyListCategories(state CreateCommunityState, res *ListCategoriesResponse) CreateCommunityState {
	state.Categories = slices.Clone(res.Categories)
	return state
}

func applyCreateCommunity(state CreateCommunityState, res *CommunityResponse) CreateCommunityState {
	state.Loading = false
	return state
}

type CreateCommunityEffects struct {
	PushUrl func(path string)
	Alert   func(errorMessage string)
}

// CreateCommunityStore backs the create-community page: it loads the category
// list at mount and, once the backend acknowledges the new community,
// navigates to its page.
type CreateCommunityStore struct {
	service *Service
	effects *CreateCommunityEffects

	stateLock sync.Mutex
	state     CreateCommunityState

	unsubs []func()
}

func NewCreateCommunityStore(
	service *Service,
	dispatcher *Dispatcher,
	effects *CreateCommunityEffects,
) *CreateCommunityStore {
	if effects == nil {
		effects = &CreateCommunityEffects{}
	}
	store := &CreateCommunityStore{
		service: service,
		effects: effects,
	}

	store.unsubs = append(
		store.unsubs,
		dispatcher.AddMessageCallback(OpListCategories, store.handleMessage),
		dispatcher.AddMessageCallback(OpCreateCommunity, store.handleMessage),
		dispatcher.AddErrorCallback(store.handleError),
	)

	return store
}

func (self *CreateCommunityStore) Mount() {
	self.service.ListCategories()
}

func (self *CreateCommunityStore) Unmount() {
	for _, unsub := range self.unsubs {
		unsub()
	}
	self.unsubs = nil
}

func (self *CreateCommunityStore) State() CreateCommunityState {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()
	return self.state
}

func (self *CreateCommunityStore) Create(form *CommunityForm) {
	self.stateLock.Lock()
	self.state.Loading = true
	self.stateLock.Unlock()

	self.service.CreateCommunity(form)
}

func (self *CreateCommunityStore) handleError(errorMessage string) {
	self.stateLock.Lock()
	self.state.Loading = false
	self.stateLock.Unlock()

	if self.effects.Alert != nil {
		self.effects.Alert(errorMessage)
	}
}

func (self *CreateCommunityStore) handleMessage(msg *Message) {
	switch msg.Op {
	case OpListCategories:
		res := msg.Payload.(*ListCategoriesResponse)
		self.stateLock.Lock()
		self.state = applyListCategories(self.state, res)
		self.stateLock.Unlock()
	case OpCreateCommunity:
		res := msg.Payload.(*CommunityResponse)
		self.stateLock.Lock()
		self.state = applyCreateCommunity(self.state, res)
		self.stateLock.Unlock()
		if self.effects.PushUrl != nil {
			self.effects.PushUrl(fmt.Sprintf("/c/%s", res.Community.Name))
		}
	}
}
