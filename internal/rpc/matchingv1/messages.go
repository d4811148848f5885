// Package matchingv1 defines the wire contract of the matching gRPC API:
// request/response messages, the JSON codec they travel with, the service
// descriptor and a typed client.
//
// There is no protobuf descriptor behind the service. Server reflection
// lists it by name but cannot describe its messages, and callers outside
// Go must use the "application/grpc+json" content-type.
package matchingv1

// SendLikeRequest asks to like ToUserId inside GroupId.
type SendLikeRequest struct {
	FromUserId uint64 `json:"from_user_id" validate:"required"`
	ToUserId   uint64 `json:"to_user_id" validate:"required,nefield=FromUserId"`
	GroupId    uint64 `json:"group_id" validate:"required"`
}

type SendLikeResponse struct {
	LikeId  uint64  `json:"like_id"`
	IsMatch bool    `json:"is_match"`
	MatchId *uint64 `json:"match_id,omitempty"`
}

type UnlikeUserRequest struct {
	FromUserId uint64 `json:"from_user_id" validate:"required"`
	ToUserId   uint64 `json:"to_user_id" validate:"required"`
	GroupId    uint64 `json:"group_id" validate:"required"`
}

type UnlikeUserResponse struct{}

type DeleteMatchRequest struct {
	MatchId     uint64 `json:"match_id" validate:"required"`
	RequesterId uint64 `json:"requester_id" validate:"required"`
}

type DeleteMatchResponse struct {
	Match *Match `json:"match"`
}

type ReportMatchRequest struct {
	MatchId     uint64  `json:"match_id" validate:"required"`
	ReporterId  uint64  `json:"reporter_id" validate:"required"`
	Reason      string  `json:"reason" validate:"required,max=64"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

type ReportMatchResponse struct {
	ReportId string `json:"report_id"`
}

type CleanupExpiredMatchesRequest struct{}

type CleanupExpiredMatchesResponse struct {
	Expired int64 `json:"expired"`
}

type ListMatchesRequest struct {
	UserId          uint64  `json:"user_id" validate:"required"`
	GroupId         *uint64 `json:"group_id,omitempty"`
	Status          *string `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE EXPIRED DELETED"`
	PaginationToken *string `json:"pagination_token,omitempty"`
	Limit           int     `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
}

// Match as seen by one of its participants.
type Match struct {
	Id            uint64 `json:"id"`
	GroupId       uint64 `json:"group_id"`
	CounterpartId uint64 `json:"counterpart_id"`
	Status        string `json:"status"`
	CreatedAt     int64  `json:"created_at_unix_ms"`
}

type ListMatchesResponse struct {
	Matches             []*Match `json:"matches"`
	NextPaginationToken *string  `json:"next_pagination_token,omitempty"`
}

type ListLikesReceivedRequest struct {
	RecipientUserId uint64  `json:"recipient_user_id" validate:"required"`
	GroupId         *uint64 `json:"group_id,omitempty"`
	PaginationToken *string `json:"pagination_token,omitempty"`
	Limit           int     `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
}

type ReceivedLike struct {
	LikeId      uint64 `json:"like_id"`
	ActorUserId uint64 `json:"actor_user_id"`
	GroupId     uint64 `json:"group_id"`
	CreatedAt   int64  `json:"created_at_unix_ms"`
}

type ListLikesReceivedResponse struct {
	Likes               []*ReceivedLike `json:"likes"`
	NextPaginationToken *string         `json:"next_pagination_token,omitempty"`
}

type CountLikesReceivedRequest struct {
	RecipientUserId uint64 `json:"recipient_user_id" validate:"required"`
}

type CountLikesReceivedResponse struct {
	Count uint64 `json:"count"`
}

type GetCreditsRequest struct {
	UserId uint64 `json:"user_id" validate:"required"`
}

type GetCreditsResponse struct {
	Credits        int  `json:"credits"`
	IsPremium      bool `json:"is_premium"`
	LikesSentToday int  `json:"likes_sent_today"`
	DailyLimit     int  `json:"daily_limit"` // 0 = unlimited
}

type RecommendRequest struct {
	UserId  uint64 `json:"user_id" validate:"required"`
	GroupId uint64 `json:"group_id" validate:"required"`
	Count   int    `json:"count" validate:"required,min=1"`
}

// Candidate is an anonymized profile; the nickname is masked and the bio
// is never sent.
type Candidate struct {
	UserId       uint64  `json:"user_id"`
	Nickname     string  `json:"nickname"`
	Bio          *string `json:"bio"`
	ProfileImage *string `json:"profile_image,omitempty"`
	Age          *int    `json:"age,omitempty"`
	Gender       *string `json:"gender,omitempty"`
	Score        int     `json:"score"`
}

type RecommendResponse struct {
	Candidates []*Candidate `json:"candidates"`
}
