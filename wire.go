package client

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// Wire contract with the backend. Every frame is a flat json object.
// Requests are `{"op": <operation name>, ...form fields}`.
// Responses are `{"op": <operation name>, ...payload fields}` or `{"error": <message>}`.

type UserOperation int

const (
	OpUnknown UserOperation = iota
	OpGetSite
	OpEditSite
	OpGetPosts
	OpCreatePostLike
	OpListCommunities
	OpGetFollowedCommunities
	OpCreateCommunity
	OpListCategories
)

func (self UserOperation) String() string {
	switch self {
	case OpGetSite:
		return "GetSite"
	case OpEditSite:
		return "EditSite"
	case OpGetPosts:
		return "GetPosts"
	case OpCreatePostLike:
		return "CreatePostLike"
	case OpListCommunities:
		return "ListCommunities"
	case OpGetFollowedCommunities:
		return "GetFollowedCommunities"
	case OpCreateCommunity:
		return "CreateCommunity"
	case OpListCategories:
		return "ListCategories"
	default:
		return "Unknown"
	}
}

func ParseUserOperation(opStr string) UserOperation {
	switch opStr {
	case "GetSite":
		return OpGetSite
	case "EditSite":
		return OpEditSite
	case "GetPosts":
		return OpGetPosts
	case "CreatePostLike":
		return OpCreatePostLike
	case "ListCommunities":
		return OpListCommunities
	case "GetFollowedCommunities":
		return OpGetFollowedCommunities
	case "CreateCommunity":
		return OpCreateCommunity
	case "ListCategories":
		return OpListCategories
	default:
		return OpUnknown
	}
}

type ListingType string

const (
	ListingTypeAll        ListingType = "All"
	ListingTypeSubscribed ListingType = "Subscribed"
)

type SortType string

const (
	SortTypeHot      SortType = "Hot"
	SortTypeNew      SortType = "New"
	SortTypeTopDay   SortType = "TopDay"
	SortTypeTopWeek  SortType = "TopWeek"
	SortTypeTopMonth SortType = "TopMonth"
	SortTypeTopYear  SortType = "TopYear"
	SortTypeTopAll   SortType = "TopAll"
)

func ListingTypes() []ListingType {
	return []ListingType{ListingTypeAll, ListingTypeSubscribed}
}

func SortTypes() []SortType {
	return []SortType{
		SortTypeHot,
		SortTypeNew,
		SortTypeTopDay,
		SortTypeTopWeek,
		SortTypeTopMonth,
		SortTypeTopYear,
		SortTypeTopAll,
	}
}

type Post struct {
	Id               int    `json:"id"`
	Name             string `json:"name"`
	Url              string `json:"url,omitempty"`
	Body             string `json:"body,omitempty"`
	CreatorId        int    `json:"creator_id"`
	CreatorName      string `json:"creator_name,omitempty"`
	CommunityId      int    `json:"community_id"`
	CommunityName    string `json:"community_name,omitempty"`
	NumberOfComments int    `json:"number_of_comments"`
	Score            int    `json:"score"`
	Upvotes          int    `json:"upvotes"`
	Downvotes        int    `json:"downvotes"`
	// 1 up, 0 none, -1 down
	MyVote    int    `json:"my_vote"`
	HotRank   int    `json:"hot_rank,omitempty"`
	Published string `json:"published,omitempty"`
}

type Community struct {
	Id                  int    `json:"id"`
	Name                string `json:"name"`
	Title               string `json:"title,omitempty"`
	Description         string `json:"description,omitempty"`
	CategoryId          int    `json:"category_id,omitempty"`
	CreatorId           int    `json:"creator_id,omitempty"`
	NumberOfSubscribers int    `json:"number_of_subscribers,omitempty"`
	NumberOfPosts       int    `json:"number_of_posts,omitempty"`
	NumberOfComments    int    `json:"number_of_comments,omitempty"`
	Published           string `json:"published,omitempty"`
}

type CommunityUser struct {
	Id            int    `json:"id"`
	UserId        int    `json:"user_id"`
	CommunityId   int    `json:"community_id"`
	CommunityName string `json:"community_name"`
	Published     string `json:"published,omitempty"`
}

type UserView struct {
	Id        int    `json:"id"`
	Name      string `json:"name"`
	Published string `json:"published,omitempty"`
}

type Category struct {
	Id   int    `json:"id"`
	Name string `json:"name"`
}

type Site struct {
	Id               int    `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	CreatorId        int    `json:"creator_id"`
	CreatorName      string `json:"creator_name,omitempty"`
	NumberOfUsers    int    `json:"number_of_users"`
	NumberOfPosts    int    `json:"number_of_posts"`
	NumberOfComments int    `json:"number_of_comments"`
	Published        string `json:"published,omitempty"`
}

type GetPostsForm struct {
	Type  ListingType `json:"type_"`
	Sort  SortType    `json:"sort"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
	Auth  string      `json:"auth,omitempty"`
}

type GetPostsResponse struct {
	Posts []Post `json:"posts"`
}

type CreatePostLikeForm struct {
	PostId int    `json:"post_id"`
	Score  int    `json:"score"`
	Auth   string `json:"auth,omitempty"`
}

type CreatePostLikeResponse struct {
	Post Post `json:"post"`
}

type GetSiteResponse struct {
	Site   *Site      `json:"site"`
	Admins []UserView `json:"admins"`
	Banned []UserView `json:"banned"`
}

type EditSiteForm struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Auth        string `json:"auth,omitempty"`
}

type SiteResponse struct {
	Site Site `json:"site"`
}

type ListCommunitiesForm struct {
	Sort  SortType `json:"sort"`
	Page  int      `json:"page,omitempty"`
	Limit int      `json:"limit,omitempty"`
	Auth  string   `json:"auth,omitempty"`
}

type ListCommunitiesResponse struct {
	Communities []Community `json:"communities"`
}

type GetFollowedCommunitiesForm struct {
	Auth string `json:"auth,omitempty"`
}

type GetFollowedCommunitiesResponse struct {
	Communities []CommunityUser `json:"communities"`
}

type CommunityForm struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	CategoryId  int    `json:"category_id"`
	Auth        string `json:"auth,omitempty"`
}

type CommunityResponse struct {
	Community Community `json:"community"`
}

type ListCategoriesResponse struct {
	Categories []Category `json:"categories"`
}

// Message is one inbound frame after decoding.
// When Error is set, Payload is nil and must not be consulted.
// When Op is OpUnknown the frame came from an operation this client does not
// know; it carries the raw op name for tracing and no payload.
type Message struct {
	Op      UserOperation
	RawOp   string
	Payload any
	Error   string
}

func EncodeRequest(op UserOperation, form any) ([]byte, error) {
	if op == OpUnknown {
		return nil, fmt.Errorf("cannot encode unknown operation")
	}

	formBytes := []byte("{}")
	if form != nil {
		var err error
		formBytes, err = jsoniter.Marshal(form)
		if err != nil {
			return nil, err
		}
	}
	if len(formBytes) < 2 || formBytes[0] != '{' {
		return nil, fmt.Errorf("form for %s must encode to a json object", op)
	}

	b := []byte(fmt.Sprintf(`{"op":%q`, op.String()))
	if 2 < len(formBytes) {
		b = append(b, ',')
		b = append(b, formBytes[1:]...)
	} else {
		b = append(b, '}')
	}
	return b, nil
}

func DecodeMessage(b []byte) (*Message, error) {
	errorAny := jsoniter.Get(b, "error")
	if errorAny.ValueType() == jsoniter.StringValue {
		return &Message{
			Error: errorAny.ToString(),
		}, nil
	}

	opStr := jsoniter.Get(b, "op").ToString()
	op := ParseUserOperation(opStr)

	var payload any
	switch op {
	case OpGetSite:
		payload = &GetSiteResponse{}
	case OpEditSite:
		payload = &SiteResponse{}
	case OpGetPosts:
		payload = &GetPostsResponse{}
	case OpCreatePostLike:
		payload = &CreatePostLikeResponse{}
	case OpListCommunities:
		payload = &ListCommunitiesResponse{}
	case OpGetFollowedCommunities:
		payload = &GetFollowedCommunitiesResponse{}
	case OpCreateCommunity:
		payload = &CommunityResponse{}
	case OpListCategories:
		payload = &ListCategoriesResponse{}
	default:
		// forward compatibility: new backend operations pass through undecoded
		return &Message{
			Op:    OpUnknown,
			RawOp: opStr,
		}, nil
	}

	if err := jsoniter.Unmarshal(b, payload); err != nil {
		return nil, err
	}
	return &Message{
		Op:      op,
		RawOp:   opStr,
		Payload: payload,
	}, nil
}
