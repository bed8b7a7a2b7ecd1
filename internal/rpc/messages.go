package rpc

import (
	"bytes"
	"encoding/json"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/xtding233/joystick-backend/internal/store"
)

type InsertRequest struct {
	X        int32  `json:"x"`
	Y        int32  `json:"y"`
	ClientID string `json:"client_id,omitempty"`
}

type Record struct {
	ID        int64                  `json:"id"`
	X         int32                  `json:"x"`
	Y         int32                  `json:"y"`
	ClientID  string                 `json:"client_id,omitempty"`
	CreatedAt *timestamppb.Timestamp `json:"created_at,omitempty"`
}

// recordJSON is Record on the wire; created_at holds the protojson form
// of the timestamp (RFC 3339).
type recordJSON struct {
	ID        int64           `json:"id"`
	X         int32           `json:"x"`
	Y         int32           `json:"y"`
	ClientID  string          `json:"client_id,omitempty"`
	CreatedAt json.RawMessage `json:"created_at,omitempty"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	out := recordJSON{ID: r.ID, X: r.X, Y: r.Y, ClientID: r.ClientID}
	if r.CreatedAt != nil {
		b, err := protojson.Marshal(r.CreatedAt)
		if err != nil {
			return nil, err
		}
		out.CreatedAt = b
	}
	return json.Marshal(out)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var in recordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = Record{ID: in.ID, X: in.X, Y: in.Y, ClientID: in.ClientID}
	if len(in.CreatedAt) > 0 && !bytes.Equal(in.CreatedAt, []byte("null")) {
		ts := new(timestamppb.Timestamp)
		if err := protojson.Unmarshal(in.CreatedAt, ts); err != nil {
			return err
		}
		r.CreatedAt = ts
	}
	return nil
}

type RecentRequest struct {
	Limit int32 `json:"limit"`
}

type RecentResponse struct {
	Records []*Record `json:"records"`
}

type DeleteBelowRequest struct {
	ID int64 `json:"id"`
}

type DeleteBelowResponse struct {
	Deleted int32 `json:"deleted"`
}

type CountRequest struct{}

type CountResponse struct {
	Count int32 `json:"count"`
}

type WatchRequest struct{}

type ChangeEvent struct {
	Kind   string  `json:"kind"`
	Record *Record `json:"record"`
}

func toWire(r store.Record) *Record {
	out := &Record{
		ID:       r.ID,
		X:        int32(r.X),
		Y:        int32(r.Y),
		ClientID: r.ClientID,
	}
	if !r.CreatedAt.IsZero() {
		out.CreatedAt = timestamppb.New(r.CreatedAt)
	}
	return out
}

func fromWire(r *Record) store.Record {
	if r == nil {
		return store.Record{}
	}
	out := store.Record{
		ID:       r.ID,
		X:        int(r.X),
		Y:        int(r.Y),
		ClientID: r.ClientID,
	}
	if r.CreatedAt != nil {
		out.CreatedAt = r.CreatedAt.AsTime()
	}
	return out
}
