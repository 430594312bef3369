package encoding

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/teamconstructor/internal/psychology"
)

const sampleJSON = `[[1,2,3],[[5,-2,0,0,0],[1,-1,0,0,0],[3,-4,0,0,0],[7,0,0,0,0],[6,-3,0,0,0]]]`

var sample = psychology.DecodedData{
	PersonalInfo: []int{1, 2, 3},
	Matrix: psychology.Matrix{
		{5, -2, 0, 0, 0},
		{1, -1, 0, 0, 0},
		{3, -4, 0, 0, 0},
		{7, 0, 0, 0, 0},
		{6, -3, 0, 0, 0},
	},
}

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestEncode(t *testing.T) {
	encoded, err := Encode(sample)
	require.NoError(t, err)
	assert.Equal(t, b64(sampleJSON), encoded)
}

func TestDecode(t *testing.T) {
	payload := Decode(b64(sampleJSON))

	require.True(t, payload.Valid())
	assert.Equal(t, b64(sampleJSON), *payload.Encoded)
	assert.Equal(t, sampleJSON, *payload.Decoded)
	assert.Equal(t, sample, *payload.Data)
}

func TestRoundTrip(t *testing.T) {
	inputs := []psychology.DecodedData{
		sample,
		{PersonalInfo: []int{0}, Matrix: psychology.Matrix{}},
		{PersonalInfo: []int{9, -9, 0, 4}, Matrix: psychology.Matrix{
			{-9, 9, -9, 9, -9},
			{1, 2, 3, 4, 5},
			{0, 0, 0, 0, 0},
			{-1, -2, -3, -4, -5},
			{9, 9, 9, 9, 9},
		}},
	}

	for _, data := range inputs {
		encoded, err := Encode(data)
		require.NoError(t, err)
		payload := Decode(encoded)
		require.True(t, payload.Valid(), encoded)
		assert.Equal(t, data, *payload.Data)

		forURL, err := EncodeForURL(data)
		require.NoError(t, err)
		assert.NotContains(t, forURL, "=")
		payload = Decode(forURL)
		require.True(t, payload.Valid(), forURL)
		assert.Equal(t, data, *payload.Data)
	}
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "not base64", input: "%%%not-base64!!"},
		{name: "truncated base64", input: b64(sampleJSON)[:10]},
		{name: "plain text", input: b64("hello world")},
		{name: "json object", input: b64(`{"matrix":[[1]]}`)},
		{name: "four rows", input: b64(`[[1],[[0,0,0,0,0],[0,0,0,0,0],[0,0,0,0,0],[0,0,0,0,0]]]`)},
		{name: "short row", input: b64(`[[1],[[0,0,0,0],[0,0,0,0,0],[0,0,0,0,0],[0,0,0,0,0],[0,0,0,0,0]]]`)},
		{name: "two digit cell", input: b64(`[[1],[[10,0,0,0,0],[0,0,0,0,0],[0,0,0,0,0],[0,0,0,0,0],[0,0,0,0,0]]]`)},
		{name: "empty personal info", input: b64(`[[],[[0,0,0,0,0],[0,0,0,0,0],[0,0,0,0,0],[0,0,0,0,0],[0,0,0,0,0]]]`)},
		{name: "shape matches but json does not", input: b64(`[[1,],[[0,0,0,0,0],[0,0,0,0,0],[0,0,0,0,0],[0,0,0,0,0],[0,0,0,0,0]]]`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := Decode(tt.input)
			assert.False(t, payload.Valid())
			assert.Equal(t, Payload{}, payload)
		})
	}
}

func TestPayload_NullJSON(t *testing.T) {
	data, err := json.Marshal(Decode("garbage"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"encoded":null,"decoded":null,"data":null}`, string(data))
}

func TestEncode_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data psychology.DecodedData
	}{
		{name: "no personal info", data: psychology.DecodedData{Matrix: sample.Matrix}},
		{name: "two digit personal info", data: psychology.DecodedData{PersonalInfo: []int{12}, Matrix: sample.Matrix}},
		{name: "two digit cell", data: psychology.DecodedData{PersonalInfo: []int{1}, Matrix: psychology.Matrix{{10}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.data)
			require.Error(t, err)
			var eb *errbuilder.ErrBuilder
			require.True(t, errors.As(err, &eb))
			assert.Equal(t, errbuilder.CodeInvalidArgument, eb.ErrCode())
		})
	}
}
