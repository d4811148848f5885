package matching

import (
	"context"

	"github.com/oggyb/groupmatch/internal/app"
	"github.com/oggyb/groupmatch/internal/db"
	svcErr "github.com/oggyb/groupmatch/internal/errors"
	pb "github.com/oggyb/groupmatch/internal/rpc/matchingv1"
	"github.com/oggyb/groupmatch/internal/service/like"
	"github.com/oggyb/groupmatch/internal/service/match"
	"github.com/oggyb/groupmatch/internal/service/recommend"
)

// Service implements the Matching gRPC API.
// It validates requests, delegates to the like/match/recommend services
// and maps their errors to gRPC statuses.
type Service struct {
	appCtx    *app.AppContext
	likes     *like.Service
	matches   *match.Service
	recommend *recommend.Service

	pb.UnimplementedMatchingServiceServer
}

// NewMatchingService wires the domain services from AppContext.
func NewMatchingService(appCtx *app.AppContext, opts ...recommend.Option) *Service {
	return &Service{
		appCtx:    appCtx,
		likes:     like.NewService(appCtx),
		matches:   match.NewService(appCtx),
		recommend: recommend.NewService(appCtx, opts...),
	}
}

func (s *Service) validate(method string, req any) error {
	if err := pb.Validate(req); err != nil {
		s.appCtx.Logger.Debug("invalid request", "method", method, "err", err)
		return svcErr.InvalidArgument(err.Error())
	}
	return nil
}

// SendLike records a like and reports whether it completed a match.
func (s *Service) SendLike(ctx context.Context, req *pb.SendLikeRequest) (*pb.SendLikeResponse, error) {
	s.appCtx.Logger.Debug("SendLike called", "from", req.FromUserId, "to", req.ToUserId, "group", req.GroupId)

	if err := s.validate("SendLike", req); err != nil {
		return nil, err
	}

	res, err := s.likes.SendLike(ctx, req.FromUserId, req.ToUserId, req.GroupId)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	return &pb.SendLikeResponse{LikeId: res.LikeID, IsMatch: res.IsMatch, MatchId: res.MatchID}, nil
}

func (s *Service) UnlikeUser(ctx context.Context, req *pb.UnlikeUserRequest) (*pb.UnlikeUserResponse, error) {
	s.appCtx.Logger.Debug("UnlikeUser called", "from", req.FromUserId, "to", req.ToUserId, "group", req.GroupId)

	if err := s.validate("UnlikeUser", req); err != nil {
		return nil, err
	}
	if err := s.likes.UnlikeUser(ctx, req.FromUserId, req.ToUserId, req.GroupId); err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.UnlikeUserResponse{}, nil
}

// ListLikesReceived returns unanswered likes, newest first, with cursor
// pagination.
func (s *Service) ListLikesReceived(ctx context.Context, req *pb.ListLikesReceivedRequest) (*pb.ListLikesReceivedResponse, error) {
	s.appCtx.Logger.Debug("ListLikesReceived called", "recipient", req.RecipientUserId, "token", req.PaginationToken)

	if err := s.validate("ListLikesReceived", req); err != nil {
		return nil, err
	}

	likes, next, err := s.likes.ListLikesReceived(ctx, req.RecipientUserId, req.GroupId, req.PaginationToken, req.Limit)
	if err != nil {
		s.appCtx.Logger.Error("ListLikesReceived failed", "err", err)
		return nil, svcErr.Map(err)
	}

	resp := &pb.ListLikesReceivedResponse{Likes: make([]*pb.ReceivedLike, 0, len(likes)), NextPaginationToken: next}
	for _, l := range likes {
		resp.Likes = append(resp.Likes, &pb.ReceivedLike{
			LikeId:      l.ID,
			ActorUserId: l.FromUserID,
			GroupId:     l.GroupID,
			CreatedAt:   l.CreatedAt.UnixMilli(),
		})
	}
	return resp, nil
}

func (s *Service) CountLikesReceived(ctx context.Context, req *pb.CountLikesReceivedRequest) (*pb.CountLikesReceivedResponse, error) {
	if err := s.validate("CountLikesReceived", req); err != nil {
		return nil, err
	}

	n, err := s.likes.CountLikesReceived(ctx, req.RecipientUserId)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.CountLikesReceivedResponse{Count: uint64(n)}, nil
}

func (s *Service) GetCredits(ctx context.Context, req *pb.GetCreditsRequest) (*pb.GetCreditsResponse, error) {
	if err := s.validate("GetCredits", req); err != nil {
		return nil, err
	}

	c, err := s.likes.GetCredits(ctx, req.UserId)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.GetCreditsResponse{
		Credits:        c.Credits,
		IsPremium:      c.IsPremium,
		LikesSentToday: c.LikesSentToday,
		DailyLimit:     c.DailyLimit,
	}, nil
}

// Recommend returns anonymized, scored candidates from the group.
func (s *Service) Recommend(ctx context.Context, req *pb.RecommendRequest) (*pb.RecommendResponse, error) {
	s.appCtx.Logger.Debug("Recommend called", "user", req.UserId, "group", req.GroupId, "count", req.Count)

	if err := s.validate("Recommend", req); err != nil {
		return nil, err
	}

	cands, err := s.recommend.Recommend(ctx, req.UserId, req.GroupId, req.Count)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	resp := &pb.RecommendResponse{Candidates: make([]*pb.Candidate, 0, len(cands))}
	for _, c := range cands {
		resp.Candidates = append(resp.Candidates, &pb.Candidate{
			UserId:       c.UserID,
			Nickname:     c.Nickname,
			Bio:          c.Bio,
			ProfileImage: c.ProfileImage,
			Age:          c.Age,
			Gender:       c.Gender,
			Score:        c.Score,
		})
	}
	return resp, nil
}

func (s *Service) DeleteMatch(ctx context.Context, req *pb.DeleteMatchRequest) (*pb.DeleteMatchResponse, error) {
	s.appCtx.Logger.Debug("DeleteMatch called", "match", req.MatchId, "requester", req.RequesterId)

	if err := s.validate("DeleteMatch", req); err != nil {
		return nil, err
	}

	m, err := s.matches.DeleteMatch(ctx, req.MatchId, req.RequesterId)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.DeleteMatchResponse{Match: toMatch(m, req.RequesterId)}, nil
}

func (s *Service) ReportMatch(ctx context.Context, req *pb.ReportMatchRequest) (*pb.ReportMatchResponse, error) {
	s.appCtx.Logger.Debug("ReportMatch called", "match", req.MatchId, "reporter", req.ReporterId, "reason", req.Reason)

	if err := s.validate("ReportMatch", req); err != nil {
		return nil, err
	}

	id, err := s.matches.ReportMatch(ctx, req.MatchId, req.ReporterId, req.Reason, req.Description)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.ReportMatchResponse{ReportId: id}, nil
}

// ListMatches pages through the caller's matches, newest first. Deleted
// matches only show up when asked for by status.
func (s *Service) ListMatches(ctx context.Context, req *pb.ListMatchesRequest) (*pb.ListMatchesResponse, error) {
	s.appCtx.Logger.Debug("ListMatches called", "user", req.UserId, "token", req.PaginationToken)

	if err := s.validate("ListMatches", req); err != nil {
		return nil, err
	}

	var st *db.MatchStatus
	if req.Status != nil {
		v := db.MatchStatus(*req.Status)
		st = &v
	}

	matches, next, err := s.matches.ListMatches(ctx, req.UserId, req.GroupId, st, req.PaginationToken, req.Limit)
	if err != nil {
		s.appCtx.Logger.Error("ListMatches failed", "err", err)
		return nil, svcErr.Map(err)
	}

	resp := &pb.ListMatchesResponse{Matches: make([]*pb.Match, 0, len(matches)), NextPaginationToken: next}
	for i := range matches {
		resp.Matches = append(resp.Matches, toMatch(&matches[i], req.UserId))
	}
	return resp, nil
}

// CleanupExpiredMatches runs the expiry sweep on demand.
func (s *Service) CleanupExpiredMatches(ctx context.Context, _ *pb.CleanupExpiredMatchesRequest) (*pb.CleanupExpiredMatchesResponse, error) {
	n, err := s.matches.CleanupExpiredMatches(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.CleanupExpiredMatchesResponse{Expired: n}, nil
}

func toMatch(m *db.Match, viewer uint64) *pb.Match {
	return &pb.Match{
		Id:            m.ID,
		GroupId:       m.GroupID,
		CounterpartId: m.Counterpart(viewer),
		Status:        string(m.Status),
		CreatedAt:     m.CreatedAt.UnixMilli(),
	}
}
