package matchingv1

import (
	"context"

	"google.golang.org/grpc"
)

// Client is a typed client for the matching service. Every call is sent
// with the JSON content-subtype.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SendLike(ctx context.Context, in *SendLikeRequest, opts ...grpc.CallOption) (*SendLikeResponse, error) {
	return invoke[SendLikeResponse](ctx, c.cc, "SendLike", in, opts)
}

func (c *Client) UnlikeUser(ctx context.Context, in *UnlikeUserRequest, opts ...grpc.CallOption) (*UnlikeUserResponse, error) {
	return invoke[UnlikeUserResponse](ctx, c.cc, "UnlikeUser", in, opts)
}

func (c *Client) ListLikesReceived(ctx context.Context, in *ListLikesReceivedRequest, opts ...grpc.CallOption) (*ListLikesReceivedResponse, error) {
	return invoke[ListLikesReceivedResponse](ctx, c.cc, "ListLikesReceived", in, opts)
}

func (c *Client) CountLikesReceived(ctx context.Context, in *CountLikesReceivedRequest, opts ...grpc.CallOption) (*CountLikesReceivedResponse, error) {
	return invoke[CountLikesReceivedResponse](ctx, c.cc, "CountLikesReceived", in, opts)
}

func (c *Client) GetCredits(ctx context.Context, in *GetCreditsRequest, opts ...grpc.CallOption) (*GetCreditsResponse, error) {
	return invoke[GetCreditsResponse](ctx, c.cc, "GetCredits", in, opts)
}

func (c *Client) Recommend(ctx context.Context, in *RecommendRequest, opts ...grpc.CallOption) (*RecommendResponse, error) {
	return invoke[RecommendResponse](ctx, c.cc, "Recommend", in, opts)
}

func (c *Client) DeleteMatch(ctx context.Context, in *DeleteMatchRequest, opts ...grpc.CallOption) (*DeleteMatchResponse, error) {
	return invoke[DeleteMatchResponse](ctx, c.cc, "DeleteMatch", in, opts)
}

func (c *Client) ReportMatch(ctx context.Context, in *ReportMatchRequest, opts ...grpc.CallOption) (*ReportMatchResponse, error) {
	return invoke[ReportMatchResponse](ctx, c.cc, "ReportMatch", in, opts)
}

func (c *Client) ListMatches(ctx context.Context, in *ListMatchesRequest, opts ...grpc.CallOption) (*ListMatchesResponse, error) {
	return invoke[ListMatchesResponse](ctx, c.cc, "ListMatches", in, opts)
}

func (c *Client) CleanupExpiredMatches(ctx context.Context, in *CleanupExpiredMatchesRequest, opts ...grpc.CallOption) (*CleanupExpiredMatchesResponse, error) {
	return invoke[CleanupExpiredMatchesResponse](ctx, c.cc, "CleanupExpiredMatches", in, opts)
}
