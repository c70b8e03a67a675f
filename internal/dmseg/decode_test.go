package dmseg

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestDecodeRoundTripKeepsOrder(t *testing.T) {
	in := []Elem{
		{ID: 101, Progress: 1500, Mode: 1, FontSize: 25, Color: 16777215, MidHash: "a1b2c3", Content: "first", CTime: 1700000000, Weight: 3, Pool: 0, IDStr: "101"},
		{ID: 102, Progress: 900, Mode: 5, FontSize: 18, Color: 255, MidHash: "d4e5", Content: "弹幕", CTime: 1700000100, Action: "picture:x", Pool: 1, Attr: 4},
	}

	out, err := Decode(Encode(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	elem := protowire.AppendTag(nil, 7, protowire.BytesType)
	elem = protowire.AppendString(elem, "hello")
	elem = protowire.AppendTag(elem, 99, protowire.Fixed32Type)
	elem = protowire.AppendFixed32(elem, 42)

	var payload []byte
	payload = protowire.AppendTag(payload, 2, protowire.BytesType)
	payload = protowire.AppendString(payload, "state")
	payload = protowire.AppendTag(payload, 1, protowire.BytesType)
	payload = protowire.AppendBytes(payload, elem)

	out, err := Decode(payload)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "hello", out[0].Content)
}

func TestDecodeEmptyPayload(t *testing.T) {
	out, err := Decode(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDecodeRejectsTruncatedPayload(t *testing.T) {
	payload := Encode([]Elem{{ID: 1, Content: "cut"}})
	_, err := Decode(payload[:len(payload)-2])
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestDecodeNegativeInt32(t *testing.T) {
	out, err := Decode(Encode([]Elem{{Weight: -1, Progress: 10}}))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int32(-1), out[0].Weight)
}
