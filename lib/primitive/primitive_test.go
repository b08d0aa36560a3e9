package primitive

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

type status string

func (s status) String() string { return "status:" + string(s) }

type opaque struct{ n int }

type point struct{ X, Y int }

func (p point) Primitive() any { return []any{p.X, p.Y} }

func TestMapKeepsOrderInJSON(t *testing.T) {
	m := Map{}.Set("z", 1).Set("a", "two").Set("m", Map{}.Set("b", true))
	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":"two","m":{"b":true}}`, string(out))
}

func TestMapSetReplacesInPlace(t *testing.T) {
	m := Map{}.Set("a", 1).Set("b", 2).Set("a", 3)
	assert.Equal(t, []string{"a", "b"}, m.Keys())
	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestMapMsgpackOrder(t *testing.T) {
	m := Map{}.Set("second", 2).Set("first", 1)
	packed, err := msgpack.Marshal(m)
	require.NoError(t, err)

	dec := msgpack.NewDecoder(bytes.NewReader(packed))
	n, err := dec.DecodeMapLen()
	require.NoError(t, err)
	require.Equal(t, 2, n)
	k, err := dec.DecodeString()
	require.NoError(t, err)
	assert.Equal(t, "second", k)
}

func TestPrimitivize(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	name := "ptr"
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"string", "x", "x"},
		{"int", 3, 3},
		{"stringer", status("ok"), "status:ok"},
		{"time", ts, "2024-05-01T12:00:00Z"},
		{"pointer", &name, "ptr"},
		{"slice", []string{"a", "b"}, []any{"a", "b"}},
		{"nil slice", []int(nil), []any{}},
		{"sorted map", map[string]int{"b": 2, "a": 1}, Map{{Key: "a", Value: 1}, {Key: "b", Value: 2}}},
		{"primitiver", point{1, 2}, []any{1, 2}},
		{"nested map", Map{{Key: "p", Value: point{3, 4}}}, Map{{Key: "p", Value: []any{3, 4}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Primitivize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrimitivizeRejectsStructs(t *testing.T) {
	_, err := Primitivize(Map{{Key: "x", Value: opaque{1}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotPrimitive)
	assert.Contains(t, err.Error(), `key "x"`)
}

func TestFromMap(t *testing.T) {
	assert.Nil(t, FromMap(nil))
	assert.Equal(t, []string{"a", "b", "c"}, FromMap(map[string]any{"c": 3, "a": 1, "b": 2}).Keys())
}
