package matchingv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "groupmatch.matching.v1.MatchingService"

// MatchingServiceServer is the server API for the matching service.
type MatchingServiceServer interface {
	SendLike(context.Context, *SendLikeRequest) (*SendLikeResponse, error)
	UnlikeUser(context.Context, *UnlikeUserRequest) (*UnlikeUserResponse, error)
	ListLikesReceived(context.Context, *ListLikesReceivedRequest) (*ListLikesReceivedResponse, error)
	CountLikesReceived(context.Context, *CountLikesReceivedRequest) (*CountLikesReceivedResponse, error)
	GetCredits(context.Context, *GetCreditsRequest) (*GetCreditsResponse, error)
	Recommend(context.Context, *RecommendRequest) (*RecommendResponse, error)
	DeleteMatch(context.Context, *DeleteMatchRequest) (*DeleteMatchResponse, error)
	ReportMatch(context.Context, *ReportMatchRequest) (*ReportMatchResponse, error)
	ListMatches(context.Context, *ListMatchesRequest) (*ListMatchesResponse, error)
	CleanupExpiredMatches(context.Context, *CleanupExpiredMatchesRequest) (*CleanupExpiredMatchesResponse, error)
}

// UnimplementedMatchingServiceServer can be embedded to have forward
// compatible implementations.
type UnimplementedMatchingServiceServer struct{}

func (UnimplementedMatchingServiceServer) SendLike(context.Context, *SendLikeRequest) (*SendLikeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SendLike not implemented")
}
func (UnimplementedMatchingServiceServer) UnlikeUser(context.Context, *UnlikeUserRequest) (*UnlikeUserResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UnlikeUser not implemented")
}
func (UnimplementedMatchingServiceServer) ListLikesReceived(context.Context, *ListLikesReceivedRequest) (*ListLikesReceivedResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListLikesReceived not implemented")
}
func (UnimplementedMatchingServiceServer) CountLikesReceived(context.Context, *CountLikesReceivedRequest) (*CountLikesReceivedResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CountLikesReceived not implemented")
}
func (UnimplementedMatchingServiceServer) GetCredits(context.Context, *GetCreditsRequest) (*GetCreditsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetCredits not implemented")
}
func (UnimplementedMatchingServiceServer) Recommend(context.Context, *RecommendRequest) (*RecommendResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Recommend not implemented")
}
func (UnimplementedMatchingServiceServer) DeleteMatch(context.Context, *DeleteMatchRequest) (*DeleteMatchResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteMatch not implemented")
}
func (UnimplementedMatchingServiceServer) ReportMatch(context.Context, *ReportMatchRequest) (*ReportMatchResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ReportMatch not implemented")
}
func (UnimplementedMatchingServiceServer) ListMatches(context.Context, *ListMatchesRequest) (*ListMatchesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListMatches not implemented")
}
func (UnimplementedMatchingServiceServer) CleanupExpiredMatches(context.Context, *CleanupExpiredMatchesRequest) (*CleanupExpiredMatchesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CleanupExpiredMatches not implemented")
}

func RegisterMatchingServiceServer(s grpc.ServiceRegistrar, srv MatchingServiceServer) {
	s.RegisterService(&MatchingService_ServiceDesc, srv)
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

func unary[Req, Resp any](name string, call func(MatchingServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(MatchingServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(MatchingServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// MatchingService_ServiceDesc is the grpc.ServiceDesc for the matching
// service. Messages are carried by the "json" codec.
var MatchingService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MatchingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("SendLike", MatchingServiceServer.SendLike),
		unary("UnlikeUser", MatchingServiceServer.UnlikeUser),
		unary("ListLikesReceived", MatchingServiceServer.ListLikesReceived),
		unary("CountLikesReceived", MatchingServiceServer.CountLikesReceived),
		unary("GetCredits", MatchingServiceServer.GetCredits),
		unary("Recommend", MatchingServiceServer.Recommend),
		unary("DeleteMatch", MatchingServiceServer.DeleteMatch),
		unary("ReportMatch", MatchingServiceServer.ReportMatch),
		unary("ListMatches", MatchingServiceServer.ListMatches),
		unary("CleanupExpiredMatches", MatchingServiceServer.CleanupExpiredMatches),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "matching/v1/matching.json",
}
