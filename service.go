package client

// Sender is the one contract a store needs from the session: fire one typed
// request at the backend, best effort.
type Sender interface {
	Send(op UserOperation, form any) bool
}

// Service is the typed request surface over the session, one method per
// outbound operation. It attaches the identity's auth token to the forms that
// carry one. Responses come back through the dispatcher, never through these
// methods.
type Service struct {
	sender   Sender
	identity *Identity
}

func NewService(sender Sender, identity *Identity) *Service {
	return &Service{
		sender:   sender,
		identity: identity,
	}
}

func (self *Service) GetSite() bool {
	return self.sender.Send(OpGetSite, nil)
}

func (self *Service) EditSite(form *EditSiteForm) bool {
	form.Auth = self.identity.Jwt()
	return self.sender.Send(OpEditSite, form)
}

func (self *Service) GetPosts(form *GetPostsForm) bool {
	form.Auth = self.identity.Jwt()
	return self.sender.Send(OpGetPosts, form)
}

func (self *Service) CreatePostLike(form *CreatePostLikeForm) bool {
	form.Auth = self.identity.Jwt()
	return self.sender.Send(OpCreatePostLike, form)
}

func (self *Service) ListCommunities(form *ListCommunitiesForm) bool {
	form.Auth = self.identity.Jwt()
	return self.sender.Send(OpListCommunities, form)
}

func (self *Service) GetFollowedCommunities() bool {
	form := &GetFollowedCommunitiesForm{
		Auth: self.identity.Jwt(),
	}
	return self.sender.Send(OpGetFollowedCommunities, form)
}

func (self *Service) CreateCommunity(form *CommunityForm) bool {
	form.Auth = self.identity.Jwt()
	return self.sender.Send(OpCreateCommunity, form)
}

func (self *Service) ListCategories() bool {
	return self.sender.Send(OpListCategories, nil)
}
