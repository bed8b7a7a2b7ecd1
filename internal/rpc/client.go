package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/xtding233/joystick-backend/internal/store"
)

// Client is a store.Store backed by a remote PositionStore service.
type Client struct {
	conn *grpc.ClientConn
}

var (
	_ store.Store   = (*Client)(nil)
	_ store.Watcher = (*Client)(nil)
)

// NewClient prepares a connection to target. The connection is lazy: an
// unreachable server shows up as store.ErrUnavailable on the first call.
func NewClient(target string, opts ...grpc.DialOption) (*Client, error) {
	base := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	}
	conn, err := grpc.NewClient(target, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) Insert(ctx context.Context, x, y int, clientID string) (store.Record, error) {
	resp := new(Record)
	req := &InsertRequest{X: int32(x), Y: int32(y), ClientID: clientID}
	if err := c.conn.Invoke(ctx, insertMethod, req, resp); err != nil {
		return store.Record{}, wrap("insert", err)
	}
	return fromWire(resp), nil
}

func (c *Client) Recent(ctx context.Context, limit int) ([]store.Record, error) {
	resp := new(RecentResponse)
	if err := c.conn.Invoke(ctx, recentMethod, &RecentRequest{Limit: int32(limit)}, resp); err != nil {
		return nil, wrap("recent", err)
	}
	out := make([]store.Record, 0, len(resp.Records))
	for _, r := range resp.Records {
		out = append(out, fromWire(r))
	}
	return out, nil
}

func (c *Client) DeleteBelow(ctx context.Context, id int64) (int, error) {
	resp := new(DeleteBelowResponse)
	if err := c.conn.Invoke(ctx, deleteBelowMethod, &DeleteBelowRequest{ID: id}, resp); err != nil {
		return 0, wrap("delete", err)
	}
	return int(resp.Deleted), nil
}

func (c *Client) Count(ctx context.Context) (int, error) {
	resp := new(CountResponse)
	if err := c.conn.Invoke(ctx, countMethod, &CountRequest{}, resp); err != nil {
		return 0, wrap("count", err)
	}
	return int(resp.Count), nil
}

// Watch opens the change stream. The channel closes when ctx ends or the
// stream breaks; callers re-watch if they want to resume.
func (c *Client) Watch(ctx context.Context) (<-chan store.Change, error) {
	cs, err := c.conn.NewStream(ctx, &serviceDesc.Streams[0], watchMethod)
	if err != nil {
		return nil, wrap("watch", err)
	}
	if err := cs.SendMsg(&WatchRequest{}); err != nil {
		return nil, wrap("watch", err)
	}
	if err := cs.CloseSend(); err != nil {
		return nil, wrap("watch", err)
	}

	out := make(chan store.Change)
	go func() {
		defer close(out)
		for {
			ev := new(ChangeEvent)
			if err := cs.RecvMsg(ev); err != nil {
				return
			}
			select {
			case out <- store.Change{Kind: store.ChangeKind(ev.Kind), Record: fromWire(ev.Record)}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func wrap(op string, err error) error {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("rpc %s: %w: %w", op, store.ErrUnavailable, err)
	}
	return fmt.Errorf("rpc %s: %w", op, err)
}
