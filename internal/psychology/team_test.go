package psychology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTeam_Empty(t *testing.T) {
	team, err := NewTeam(nil)
	assert.Nil(t, team)
	requireInvalidArgument(t, err)
}

func TestTeam_Aggregates(t *testing.T) {
	team, err := NewTeam([]Matrix{mixedMatrix, mixedMatrix})
	require.NoError(t, err)

	assert.Equal(t, 2, team.Size())
	assert.Equal(t, [OctantCount]float64{1, 3, 2, 3, 1, 6, 5, 4}, team.Profile().Values())
	assert.Equal(t, [OctantCount]float64{1.1, 2.1, 2.1, 1.1, 1.4, 7.1, 10.6, 2.1}, team.Portrait().Values())
	assert.Equal(t, 10.6, team.MaxSector())
	assert.Equal(t, []string{"a2", "b1"}, Codes(team.MajorOctants()))
	assert.Equal(t, 6.0, team.TeamMaxIntensity())
	assert.Len(t, team.ProfileList(), 2)
	assert.Len(t, team.PortraitList(), 2)
	assert.Len(t, team.ResultList(), 2)
}

func TestTeam_Metrics(t *testing.T) {
	team, err := NewTeam([]Matrix{mixedMatrix, mixedMatrix})
	require.NoError(t, err)

	assert.InDelta(t, 27.6/84.8, team.CrossFunc(), 1e-9)
	assert.Equal(t, 1.0, team.Interaction())
	assert.InDelta(t, 6.4/21.2, team.EmotionalComp(), 1e-9)
	assert.InDelta(t, 0.8, team.Loyalty(), 1e-12)
	assert.Equal(t, 14, team.Commitment())
	assert.Equal(t, []int{5, 6}, team.DescIndexes())
	assert.Equal(t, []int{0, 1, 2, 3, 4, 7}, team.NeededPsychoType())
}

func TestTeam_DegenerateMetrics(t *testing.T) {
	team, err := NewTeam([]Matrix{{}})
	require.NoError(t, err)

	assert.Equal(t, 0.0, team.MaxSector())
	assert.Len(t, team.MajorOctants(), OctantCount)
	assert.Equal(t, -1.0, team.CrossFunc())
	assert.Equal(t, -1.0, team.Interaction())
	assert.Equal(t, -1.0, team.EmotionalComp())
	assert.Equal(t, 0.0, team.Loyalty())
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, team.DescIndexes())
	assert.Empty(t, team.NeededPsychoType())

	onlyTop, err := NewTeam([]Matrix{leftTwinMatrix})
	require.NoError(t, err)
	assert.Equal(t, -1.0, onlyTop.EmotionalComp(), "second half of the portrait is empty")
	assert.Equal(t, 0.0, onlyTop.Loyalty())

	noBottom, err := NewTeam([]Matrix{{
		{-3, 0, 0, 0, 0},
		{-2, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
	}})
	require.NoError(t, err)
	// profile [2,0,3,0,0,0,0,0]: top 2, bottom 0 falls back to 0.1
	assert.InDelta(t, 20.0, noBottom.Loyalty(), 1e-9)
}

func TestTeam_Interaction(t *testing.T) {
	team, err := NewTeam([]Matrix{mixedMatrix, calmMatrix})
	require.NoError(t, err)
	assert.InDelta(t, 0.35/10.61, team.Interaction(), 1e-12)
}

func TestTeam_LeadingMemberByType(t *testing.T) {
	team, err := NewTeam([]Matrix{mixedMatrix, innovatorMatrix})
	require.NoError(t, err)

	tests := []struct {
		name      string
		typeIndex int
		want      int
		wantErr   bool
	}{
		{name: "second member leads A2", typeIndex: 1, want: 1},
		{name: "tie goes to first member", typeIndex: 6, want: 0},
		{name: "first member leads a2", typeIndex: 5, want: 0},
		{name: "negative index", typeIndex: -1, wantErr: true},
		{name: "index past last octant", typeIndex: OctantCount, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := team.LeadingMemberByType(tt.typeIndex)
			if tt.wantErr {
				requireInvalidArgument(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, [OctantCount]int{0, 1, 0, 0, 0, 0, 0, 0}, team.Summary().LeadingMembers)
}

func TestTeam_Candidates(t *testing.T) {
	team, err := NewTeam([]Matrix{mixedMatrix, mixedMatrix})
	require.NoError(t, err)

	pool := []Member{
		member(10, innovatorMatrix),
		member(11, intenseMatrix),
		member(12, calmMatrix),
		member(13, mixedMatrix),
	}

	tests := []struct {
		name       string
		spec       Specialization
		wantIDs    []int
		wantNeeded bool
	}{
		{name: "any specialization", spec: SpecAll, wantIDs: []int{10, 13}, wantNeeded: true},
		{name: "A group", spec: SpecA, wantIDs: []int{10}, wantNeeded: true},
		{name: "B group", spec: SpecB, wantIDs: []int{}, wantNeeded: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidates, needed, err := team.Candidates(tt.spec, pool)
			require.NoError(t, err)
			assert.Equal(t, tt.wantNeeded, needed)

			ids := []int{}
			for _, c := range candidates {
				ids = append(ids, c.BaseID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	_, _, err = team.Candidates(Specialization(9), pool)
	requireInvalidArgument(t, err)
}

func TestTeam_CandidatesNotNeeded(t *testing.T) {
	balanced, err := NewTeam([]Matrix{leftTwinMatrix})
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, Codes(balanced.MajorOctants()))

	needed, err := balanced.IsSmbNeeded(SpecA)
	require.NoError(t, err)
	assert.False(t, needed)

	needed, err = balanced.IsSmbNeeded(SpecAll)
	require.NoError(t, err)
	assert.False(t, needed, "the all-codes group is judged by its first two codes")

	needed, err = balanced.IsSmbNeeded(SpecB)
	require.NoError(t, err)
	assert.True(t, needed)

	candidates, needed, err := balanced.Candidates(SpecA, []Member{member(1, innovatorMatrix)})
	require.NoError(t, err)
	assert.False(t, needed)
	assert.Nil(t, candidates)

	full, err := NewTeam([]Matrix{{}})
	require.NoError(t, err)
	candidates, needed, err = full.Candidates(SpecB, []Member{member(1, innovatorMatrix)})
	require.NoError(t, err)
	assert.False(t, needed, "every octant is already major")
	assert.Nil(t, candidates)
}

func TestTeam_Unwanted(t *testing.T) {
	team, err := NewTeam([]Matrix{mixedMatrix, mixedMatrix})
	require.NoError(t, err)

	members := []Member{
		member(1, innovatorMatrix),
		member(2, intenseMatrix),
		member(3, calmMatrix),
	}
	unwanted := team.Unwanted(members)
	require.Len(t, unwanted, 2)
	assert.Equal(t, 2, unwanted[0].BaseID)
	assert.Equal(t, 3, unwanted[1].BaseID)

	assert.True(t, team.CheckIntensity(PersonProfile(innovatorMatrix)))
	assert.False(t, team.CheckIntensity(PersonProfile(intenseMatrix)))
}

func TestAllCandidates(t *testing.T) {
	pool := []Member{member(1, Matrix{}), member(2, Matrix{}), member(3, Matrix{}), member(4, Matrix{})}
	team := []Member{member(2, Matrix{}), member(4, Matrix{}), member(7, Matrix{})}

	candidates := AllCandidates(pool, team)
	require.Len(t, candidates, 2)
	assert.Equal(t, 1, candidates[0].BaseID)
	assert.Equal(t, 3, candidates[1].BaseID)

	assert.Len(t, AllCandidates(pool, nil), 4)
	assert.Empty(t, AllCandidates(nil, team))
}

func TestTeam_Summary(t *testing.T) {
	team, err := NewTeam([]Matrix{mixedMatrix, mixedMatrix})
	require.NoError(t, err)

	summary := team.Summary()
	assert.Equal(t, 2, summary.Size)
	assert.Equal(t, team.CrossFunc(), summary.CrossFunc)
	assert.Equal(t, team.Loyalty(), summary.Loyalty)
	assert.Equal(t, team.Commitment(), summary.Commitment)
	assert.Equal(t, team.MajorOctants(), summary.MajorOctants)
	assert.Equal(t, team.DescIndexes(), summary.DescIndexes)
}
