package rpc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func TestCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)
	assert.Equal(t, CodecName, c.Name())
}

func TestCodecProtoMessagesUseProtoJSON(t *testing.T) {
	ts := timestamppb.New(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	b, err := jsonCodec{}.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01T12:00:00Z"`, string(b))

	got := new(timestamppb.Timestamp)
	require.NoError(t, jsonCodec{}.Unmarshal(b, got))
	assert.True(t, got.AsTime().Equal(ts.AsTime()))
}

func TestCodecPlainMessages(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 500, time.UTC)
	in := &Record{ID: 9, X: -1000, Y: 250, ClientID: "c", CreatedAt: timestamppb.New(created)}
	b, err := jsonCodec{}.Marshal(in)
	require.NoError(t, err)

	out := new(Record)
	require.NoError(t, jsonCodec{}.Unmarshal(b, out))
	rec := fromWire(out)
	assert.Equal(t, int64(9), rec.ID)
	assert.Equal(t, -1000, rec.X)
	assert.Equal(t, 250, rec.Y)
	assert.True(t, created.Equal(rec.CreatedAt))
}

func TestCodecRecordTimestampIsRFC3339(t *testing.T) {
	ts := timestamppb.New(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	b, err := jsonCodec{}.Marshal(&Record{ID: 1, CreatedAt: ts})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"x":0,"y":0,"created_at":"2024-03-01T12:00:00Z"}`, string(b))

	b, err = jsonCodec{}.Marshal(&ChangeEvent{Kind: "insert", Record: &Record{ID: 2, X: 5, CreatedAt: ts}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"insert","record":{"id":2,"x":5,"y":0,"created_at":"2024-03-01T12:00:00Z"}}`, string(b))

	got := new(ChangeEvent)
	require.NoError(t, jsonCodec{}.Unmarshal(b, got))
	require.NotNil(t, got.Record.CreatedAt)
	assert.True(t, ts.AsTime().Equal(got.Record.CreatedAt.AsTime()))
}

func TestCodecRecordWithoutTimestamp(t *testing.T) {
	b, err := jsonCodec{}.Marshal(&Record{ID: 3, X: 1, Y: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3,"x":1,"y":2}`, string(b))

	got := new(Record)
	require.NoError(t, jsonCodec{}.Unmarshal([]byte(`{"id":3,"created_at":null}`), got))
	assert.Nil(t, got.CreatedAt)

	assert.Error(t, jsonCodec{}.Unmarshal([]byte(`{"id":3,"created_at":"yesterday"}`), got))
}
