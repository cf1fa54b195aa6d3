package client

import (
	"slices"
	"sync"

	"github.com/golang/glog"
)

// HomeState is everything the home listing needs to render. It is a value:
// transitions return a new state and never mutate the previous one, so a
// reader holding the old value never observes a half-applied update.
type HomeState struct {
	SubscribedCommunities []CommunityUser
	TrendingCommunities   []Community
	Site                  *Site
	Admins                []UserView
	Banned                []UserView
	ShowEditSite          bool
	// true from request issuance until the matching GetPosts response.
	// Posts is stale while Loading is set; the renderer shows the spinner
	// instead of the list.
	Loading bool
	Posts   []Post

	// the filter key
	ListingType ListingType
	SortType    SortType
	Page        int
}

func EmptyHomeState(listingType ListingType, sortType SortType, page int) HomeState {
	return HomeState{
		Loading:     true,
		ListingType: listingType,
		SortType:    sortType,
		Page:        page,
	}
}

// the only transition allowed to replace Posts wholesale
func applyGetPosts(state HomeState, res *GetPostsResponse) HomeState {
	state.Posts = slices.Clone(res.Posts)
	state.Loading = false
	return state
}

// Optimistic-update reconciliation. The backend is the source of truth for
// the numeric outcome, but only the one entity changes; the rest of Posts and
// Loading are untouched. A response for a post no longer in the list is a
// no-op, since the list may have paginated past it.
func applyPostLike(state HomeState, res *CreatePostLikeResponse) HomeState {
	i := slices.IndexFunc(state.Posts, func(post Post) bool {
		return post.Id == res.Post.Id
	})
	if i < 0 {
		return state
	}
	posts := slices.Clone(state.Posts)
	posts[i].MyVote = res.Post.MyVote
	posts[i].Score = res.Post.Score
	posts[i].Upvotes = res.Post.Upvotes
	posts[i].Downvotes = res.Post.Downvotes
	state.Posts = posts
	return state
}

func applyGetSite(state HomeState, res *GetSiteResponse) HomeState {
	state.Site = res.Site
	state.Admins = slices.Clone(res.Admins)
	state.Banned = slices.Clone(res.Banned)
	return state
}

func applyEditSite(state HomeState, res *SiteResponse) HomeState {
	site := res.Site
	state.Site = &site
	state.ShowEditSite = false
	return state
}

func applyListCommunities(state HomeState, res *ListCommunitiesResponse) HomeState {
	state.TrendingCommunities = slices.Clone(res.Communities)
	return state
}

func applyFollowedCommunities(state HomeState, res *GetFollowedCommunitiesResponse) HomeState {
	state.SubscribedCommunities = slices.Clone(res.Communities)
	return state
}

// HomeEffects are the view-side reactions a transition can trigger. They are
// injected so the store stays renderer-agnostic; nil fields are skipped.
type HomeEffects struct {
	ScrollToTop   func()
	RedirectSetup func()
	PushUrl       func(path string)
	Alert         func(errorMessage string)
	SetTitle      func(title string)
}

// HomeStore binds the home listing state to the session. It registers for the
// operations it consumes and applies the matching transition whether the
// message answers its own request or is an unsolicited push from another
// client's action.
type HomeStore struct {
	service  *Service
	identity *Identity
	effects  *HomeEffects

	stateLock sync.Mutex
	state     HomeState

	unsubs []func()
}

// DefaultFilterKey is the mount key when the url carries none: logged-in
// users land on their subscriptions, everyone else on All/Hot/1.
func DefaultFilterKey(identity *Identity) (ListingType, SortType, int) {
	if identity.User() != nil {
		return ListingTypeSubscribed, SortTypeHot, 1
	}
	return ListingTypeAll, SortTypeHot, 1
}

func NewHomeStore(
	service *Service,
	identity *Identity,
	dispatcher *Dispatcher,
	effects *HomeEffects,
	listingType ListingType,
	sortType SortType,
	page int,
) *HomeStore {
	if effects == nil {
		effects = &HomeEffects{}
	}
	store := &HomeStore{
		service:  service,
		identity: identity,
		effects:  effects,
		state:    EmptyHomeState(listingType, sortType, page),
	}

	store.unsubs = append(
		store.unsubs,
		dispatcher.AddMessageCallback(OpGetPosts, store.handleMessage),
		dispatcher.AddMessageCallback(OpCreatePostLike, store.handleMessage),
		dispatcher.AddMessageCallback(OpGetSite, store.handleMessage),
		dispatcher.AddMessageCallback(OpEditSite, store.handleMessage),
		dispatcher.AddMessageCallback(OpListCommunities, store.handleMessage),
		dispatcher.AddMessageCallback(OpGetFollowedCommunities, store.handleMessage),
		dispatcher.AddErrorCallback(store.handleError),
	)

	return store
}

// Mount issues the page's initial requests: site info, the auxiliary
// community lists, and the first posts fetch for the mount filter key.
func (self *HomeStore) Mount() {
	self.service.GetSite()
	if self.identity.User() != nil {
		self.service.GetFollowedCommunities()
	}
	self.service.ListCommunities(&ListCommunitiesForm{
		Sort:  SortTypeHot,
		Limit: TrendingLimit,
	})
	self.fetchPosts()
}

func (self *HomeStore) Unmount() {
	for _, unsub := range self.unsubs {
		unsub()
	}
	self.unsubs = nil
}

func (self *HomeStore) State() HomeState {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()
	return self.state
}

func (self *HomeStore) handleError(errorMessage string) {
	// state is left unchanged
	if self.effects.Alert != nil {
		self.effects.Alert(errorMessage)
	}
}

func (self *HomeStore) handleMessage(msg *Message) {
	switch msg.Op {
	case OpGetPosts:
		res := msg.Payload.(*GetPostsResponse)
		self.swap(func(state HomeState) HomeState {
			return applyGetPosts(state, res)
		})
		if self.effects.ScrollToTop != nil {
			self.effects.ScrollToTop()
		}
	case OpCreatePostLike:
		res := msg.Payload.(*CreatePostLikeResponse)
		self.swap(func(state HomeState) HomeState {
			return applyPostLike(state, res)
		})
	case OpGetSite:
		res := msg.Payload.(*GetSiteResponse)
		if res.Site == nil {
			// the service has never been configured
			if self.effects.RedirectSetup != nil {
				self.effects.RedirectSetup()
			}
		}
		self.swap(func(state HomeState) HomeState {
			return applyGetSite(state, res)
		})
		if res.Site != nil && self.effects.SetTitle != nil {
			self.effects.SetTitle(res.Site.Name)
		}
	case OpEditSite:
		res := msg.Payload.(*SiteResponse)
		self.swap(func(state HomeState) HomeState {
			return applyEditSite(state, res)
		})
	case OpListCommunities:
		res := msg.Payload.(*ListCommunitiesResponse)
		self.swap(func(state HomeState) HomeState {
			return applyListCommunities(state, res)
		})
	case OpGetFollowedCommunities:
		res := msg.Payload.(*GetFollowedCommunitiesResponse)
		self.swap(func(state HomeState) HomeState {
			return applyFollowedCommunities(state, res)
		})
	default:
		glog.V(2).Infof("[h]ignore %s\n", msg.Op)
	}
}

func (self *HomeStore) swap(transition func(HomeState) HomeState) {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()
	self.state = transition(self.state)
}

func (self *HomeStore) NextPage() {
	self.setFilterKey(func(state *HomeState) {
		state.Page += 1
	})
}

// a no-op on the first page
func (self *HomeStore) PrevPage() {
	self.stateLock.Lock()
	if self.state.Page <= 1 {
		self.stateLock.Unlock()
		return
	}
	self.stateLock.Unlock()

	self.setFilterKey(func(state *HomeState) {
		state.Page -= 1
	})
}

func (self *HomeStore) SetSortType(sortType SortType) {
	self.setFilterKey(func(state *HomeState) {
		state.SortType = sortType
		state.Page = 1
	})
}

func (self *HomeStore) SetListingType(listingType ListingType) {
	self.setFilterKey(func(state *HomeState) {
		state.ListingType = listingType
		state.Page = 1
	})
}

// setFilterKey applies one user-driven filter change: mark loading, sync the
// url, and issue the fetch for the new key. Posts is intentionally not
// cleared, so the previous list does not flash away before the response.
func (self *HomeStore) setFilterKey(change func(state *HomeState)) {
	self.stateLock.Lock()
	state := self.state
	change(&state)
	state.Loading = true
	self.state = state
	self.stateLock.Unlock()

	if self.effects.PushUrl != nil {
		self.effects.PushUrl(HomePath(state.ListingType, state.SortType, state.Page))
	}
	self.service.GetPosts(buildGetPosts(state.ListingType, state.SortType, state.Page))
}

// Navigate rebuilds the store from a parsed path instead of patching the
// current state, so browser back/forward always lands on a consistent,
// re-fetched view. Auxiliary lists reset along with the listing, matching the
// mount-from-scratch behavior.
func (self *HomeStore) Navigate(path string) error {
	listingType, sortType, page, err := ParseHomePath(path)
	if err != nil {
		return err
	}

	self.stateLock.Lock()
	self.state = EmptyHomeState(listingType, sortType, page)
	self.stateLock.Unlock()

	self.fetchPosts()
	return nil
}

func (self *HomeStore) Refresh() {
	self.fetchPosts()
}

func (self *HomeStore) fetchPosts() {
	self.stateLock.Lock()
	state := self.state
	state.Loading = true
	self.state = state
	self.stateLock.Unlock()

	self.service.GetPosts(buildGetPosts(state.ListingType, state.SortType, state.Page))
}

// LikePost casts a vote. The numeric outcome lands later through the
// CreatePostLike response and reconciles in place.
func (self *HomeStore) LikePost(postId int, score int) {
	self.service.CreatePostLike(&CreatePostLikeForm{
		PostId: postId,
		Score:  score,
	})
}

func (self *HomeStore) OpenEditSite() {
	self.swap(func(state HomeState) HomeState {
		state.ShowEditSite = true
		return state
	})
}

func (self *HomeStore) CancelEditSite() {
	self.swap(func(state HomeState) HomeState {
		state.ShowEditSite = false
		return state
	})
}

func (self *HomeStore) EditSite(form *EditSiteForm) {
	self.service.EditSite(form)
}

// CanAdmin reports whether the logged-in user is a site admin.
func (self *HomeStore) CanAdmin() bool {
	user := self.identity.User()
	if user == nil {
		return false
	}
	state := self.State()
	return slices.ContainsFunc(state.Admins, func(admin UserView) bool {
		return admin.Id == user.Id
	})
}
