package rpc

import (
	"context"
	"errors"
	"log"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/xtding233/joystick-backend/internal/joystick"
	"github.com/xtding233/joystick-backend/internal/store"
)

const (
	serviceName = "joystick.PositionStore"

	insertMethod      = "/" + serviceName + "/Insert"
	recentMethod      = "/" + serviceName + "/Recent"
	deleteBelowMethod = "/" + serviceName + "/DeleteBelow"
	countMethod       = "/" + serviceName + "/Count"
	watchMethod       = "/" + serviceName + "/Watch"
)

// PositionStoreServer is the service contract registered with grpc.
type PositionStoreServer interface {
	Insert(context.Context, *InsertRequest) (*Record, error)
	Recent(context.Context, *RecentRequest) (*RecentResponse, error)
	DeleteBelow(context.Context, *DeleteBelowRequest) (*DeleteBelowResponse, error)
	Count(context.Context, *CountRequest) (*CountResponse, error)
	Watch(*WatchRequest, grpc.ServerStream) error
}

// Register exposes st on s.
func Register(s grpc.ServiceRegistrar, st store.Store) {
	s.RegisterService(&serviceDesc, &server{store: st})
}

type server struct {
	store store.Store
}

func (s *server) Insert(ctx context.Context, req *InsertRequest) (*Record, error) {
	if abs32(req.X) > joystick.Scale || abs32(req.Y) > joystick.Scale {
		return nil, status.Errorf(codes.InvalidArgument, "position (%d, %d) out of range", req.X, req.Y)
	}
	rec, err := s.store.Insert(ctx, int(req.X), int(req.Y), req.ClientID)
	if err != nil {
		return nil, toStatus(err)
	}
	return toWire(rec), nil
}

func (s *server) Recent(ctx context.Context, req *RecentRequest) (*RecentResponse, error) {
	if req.Limit < 0 {
		return nil, status.Error(codes.InvalidArgument, "limit must be >= 0")
	}
	recs, err := s.store.Recent(ctx, int(req.Limit))
	if err != nil {
		return nil, toStatus(err)
	}
	resp := &RecentResponse{Records: make([]*Record, 0, len(recs))}
	for _, r := range recs {
		resp.Records = append(resp.Records, toWire(r))
	}
	return resp, nil
}

func (s *server) DeleteBelow(ctx context.Context, req *DeleteBelowRequest) (*DeleteBelowResponse, error) {
	n, err := s.store.DeleteBelow(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &DeleteBelowResponse{Deleted: int32(n)}, nil
}

func (s *server) Count(ctx context.Context, _ *CountRequest) (*CountResponse, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &CountResponse{Count: int32(n)}, nil
}

func (s *server) Watch(_ *WatchRequest, stream grpc.ServerStream) error {
	w, ok := s.store.(store.Watcher)
	if !ok {
		return status.Error(codes.Unimplemented, "store does not support change notifications")
	}
	ctx := stream.Context()
	changes, err := w.Watch(ctx)
	if err != nil {
		return toStatus(err)
	}
	for c := range changes {
		if err := stream.SendMsg(&ChangeEvent{Kind: string(c.Kind), Record: toWire(c.Record)}); err != nil {
			return err
		}
	}
	return toStatus(ctx.Err())
}

func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}
	if errors.Is(err, store.ErrUnavailable) {
		return status.Error(codes.Unavailable, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// LoggingInterceptor logs every unary call with its latency.
func LoggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	if err != nil {
		log.Printf("rpc %s failed after %v: %v", info.FullMethod, time.Since(start), err)
	} else {
		log.Printf("rpc %s ok in %v", info.FullMethod, time.Since(start))
	}
	return resp, err
}

func unaryHandler[Req any, Resp any](method string, call func(PositionStoreServer, context.Context, *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PositionStoreServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PositionStoreServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	in := new(WatchRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(PositionStoreServer).Watch(in, stream)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*PositionStoreServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Insert", Handler: unaryHandler(insertMethod, PositionStoreServer.Insert)},
		{MethodName: "Recent", Handler: unaryHandler(recentMethod, PositionStoreServer.Recent)},
		{MethodName: "DeleteBelow", Handler: unaryHandler(deleteBelowMethod, PositionStoreServer.DeleteBelow)},
		{MethodName: "Count", Handler: unaryHandler(countMethod, PositionStoreServer.Count)},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Watch", Handler: watchHandler, ServerStreams: true},
	},
	Metadata: "joystick/position_store",
}
