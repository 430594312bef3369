package psychology

import (
	"errors"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Profile [1,3,2,3,1,6,5,4]; portrait
// A1 1.06, A2 2.12, B1 2.12, B2 1.06, a1 1.41, a2 7.07, b1 10.61, b2 2.12.
var mixedMatrix = Matrix{
	{5, -2, 0, 0, 0},
	{1, -1, 0, 0, 0},
	{3, -4, 0, 0, 0},
	{7, 0, 0, 0, 0},
	{6, -3, 0, 0, 0},
}

// Profile [0,0,5,5,0,6,5,0]; portrait b1 10.61, A2 8.84, rest 0.
var innovatorMatrix = Matrix{
	{5, -5, 0, 0, 0},
	{0, 0, 0, 0, 0},
	{5, 0, 0, 0, 0},
	{0, 0, 0, 0, 0},
	{6, 0, 0, 0, 0},
}

// Same shape as innovatorMatrix with a profile peak of 9.
var intenseMatrix = Matrix{
	{5, -5, 0, 0, 0},
	{0, 0, 0, 0, 0},
	{5, 0, 0, 0, 0},
	{0, 0, 0, 0, 0},
	{9, 0, 0, 0, 0},
}

// Profile peak of 1.
var calmMatrix = Matrix{
	{1, -1, 0, 0, 0},
	{0, 0, 0, 0, 0},
	{1, 0, 0, 0, 0},
	{0, 0, 0, 0, 0},
	{1, 0, 0, 0, 0},
}

// Profile [0,0,5,5,5,0,0,0]; portrait A1 8.84, A2 8.84, rest 0.
var leftTwinMatrix = Matrix{
	{-5, 0, 0, 0, 0},
	{5, 0, 0, 0, 0},
	{5, 0, 0, 0, 0},
	{0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0},
}

// Portrait with a2 as the only sector.
var a2Matrix = Matrix{
	{5, 0, 0, 0, 0},
	{0, 0, 0, 0, 0},
	{-5, 0, 0, 0, 0},
	{0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0},
}

// Portrait with b2 as the only sector.
var b2Matrix = Matrix{
	{0, 0, 0, 0, 0},
	{5, 0, 0, 0, 0},
	{0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0},
	{5, 0, 0, 0, 0},
}

func member(id int, m Matrix) Member {
	return Member{
		ID:      "member",
		Name:    "Member",
		DecData: DecodedData{PersonalInfo: []int{1, 2, 3}, Matrix: m},
		BaseID:  id,
	}
}

func requireInvalidArgument(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var eb *errbuilder.ErrBuilder
	require.True(t, errors.As(err, &eb), "expected an errbuilder error, got %T", err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, eb.ErrCode())
}
