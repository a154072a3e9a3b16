package jsonutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexibleStringValue(t *testing.T) {
	tests := []struct {
		name  string
		input json.RawMessage
		want  string
	}{
		{name: "string value", input: json.RawMessage(`"emp-1"`), want: "emp-1"},
		{name: "integer value", input: json.RawMessage(`42`), want: "42"},
		{name: "float value", input: json.RawMessage(`3.14`), want: "3.14"},
		{name: "boolean", input: json.RawMessage(`true`), want: "true"},
		{name: "null", input: json.RawMessage(`null`), want: ""},
		{name: "empty", input: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FlexibleStringValue(tt.input))
		})
	}
}

func TestStrictString(t *testing.T) {
	s, err := StrictString(json.RawMessage(`"e7"`))
	require.NoError(t, err)
	assert.Equal(t, "e7", s)

	_, err = StrictString(json.RawMessage(`7`))
	assert.Error(t, err)
}

func TestFlexibleFloat(t *testing.T) {
	tests := []struct {
		name    string
		input   json.RawMessage
		want    float64
		wantErr bool
	}{
		{name: "number", input: json.RawMessage(`0.85`), want: 0.85},
		{name: "numeric string", input: json.RawMessage(`"0.7"`), want: 0.7},
		{name: "padded numeric string", input: json.RawMessage(`" 1 "`), want: 1},
		{name: "word", input: json.RawMessage(`"high"`), wantErr: true},
		{name: "NaN string", input: json.RawMessage(`"NaN"`), wantErr: true},
		{name: "infinite string", input: json.RawMessage(`"-Inf"`), wantErr: true},
		{name: "overflowing string", input: json.RawMessage(`"1e400"`), wantErr: true},
		{name: "object", input: json.RawMessage(`{"v":1}`), wantErr: true},
		{name: "null", input: json.RawMessage(`null`), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FlexibleFloat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestFlexibleInt(t *testing.T) {
	n, err := FlexibleInt(json.RawMessage(`"3"`))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestFlexibleBool(t *testing.T) {
	assert.True(t, FlexibleBool(json.RawMessage(`true`)))
	assert.True(t, FlexibleBool(json.RawMessage(`"yes"`)))
	assert.False(t, FlexibleBool(json.RawMessage(`"nope"`)))
	assert.False(t, FlexibleBool(nil))
}
