package psychology

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

const (
	majorShare       = 0.3
	intensityCeiling = 1.3
	intensityFloor   = 0.7
	loyaltyFallback  = 0.1
)

// Specialization selects a group of octant codes a team may be reinforced with.
type Specialization int

const (
	SpecAll Specialization = iota
	SpecA
	SpecB
	SpecLowerA
	SpecLowerB
)

// SpecializationGroups lists the codes of each Specialization.
var SpecializationGroups = [...][]string{
	SpecAll:    OctantCodes[:],
	SpecA:      {"A1", "A2"},
	SpecB:      {"B1", "B2"},
	SpecLowerA: {"a1", "a2"},
	SpecLowerB: {"b1", "b2"},
}

// Valid reports whether s names a known group.
func (s Specialization) Valid() bool {
	return s >= 0 && int(s) < len(SpecializationGroups)
}

func (s Specialization) codes() ([]string, error) {
	if !s.Valid() {
		return nil, invalidArgument("specialization",
			fmt.Sprintf("specialization must be in [0, %d], got %d", len(SpecializationGroups)-1, s))
	}
	return SpecializationGroups[s], nil
}

// Team is the aggregate scoring of N members. Every per-member and
// aggregate value is computed once in NewTeam and shared by all metrics.
type Team struct {
	matrices         []Matrix
	resultList       []UserResult
	profileList      []Profile
	portraitList     []Portrait
	profile          Profile
	portrait         Portrait
	maxSector        float64
	majorOctants     []Octant
	teamMaxIntensity float64
}

// NewTeam scores every member and builds the aggregate profile and portrait.
func NewTeam(members []Matrix) (*Team, error) {
	if len(members) == 0 {
		return nil, invalidArgument("members", "team must have at least one member")
	}

	t := &Team{
		matrices:     append([]Matrix(nil), members...),
		resultList:   make([]UserResult, len(members)),
		profileList:  make([]Profile, len(members)),
		portraitList: make([]Portrait, len(members)),
	}
	profileValues := make([][OctantCount]float64, len(members))
	portraitValues := make([][OctantCount]float64, len(members))
	peaks := make([]float64, len(members))

	for i, m := range members {
		result := Score(m)
		t.resultList[i] = result
		t.profileList[i] = result.Profile
		t.portraitList[i] = result.Portrait
		profileValues[i] = result.Profile.Values()
		portraitValues[i] = result.Portrait.Values()
		peaks[i] = result.Profile.Peak()
	}

	for i, v := range averageValues(profileValues) {
		t.profile[i] = Tendency{Index: i, Value: v}
	}
	for i, v := range averageValues(portraitValues) {
		t.portrait[i] = Octant{Code: OctantCodes[i], Index: i, Value: v}
	}

	t.maxSector = t.portrait.Sorted()[0].Value
	for _, o := range t.portrait {
		if o.Value >= t.maxSector*majorShare {
			t.majorOctants = append(t.majorOctants, o)
		}
	}

	t.teamMaxIntensity, _ = stats.Mean(peaks)
	return t, nil
}

// averageValues averages each index over all members, rounded to one decimal.
func averageValues(lists [][OctantCount]float64) [OctantCount]float64 {
	var avg [OctantCount]float64
	n := float64(len(lists))
	column := make([]float64, len(lists))
	for i := range avg {
		for m, values := range lists {
			column[m] = values[i]
		}
		avg[i] = roundFixed(sum(column)/n, 1)
	}
	return avg
}

// Size is the number of members.
func (t *Team) Size() int { return len(t.resultList) }

// ResultList returns a copy of the members' scored results, in input order.
func (t *Team) ResultList() []UserResult { return append([]UserResult(nil), t.resultList...) }

// ProfileList returns a copy of the members' profiles.
func (t *Team) ProfileList() []Profile { return append([]Profile(nil), t.profileList...) }

// PortraitList returns a copy of the members' portraits.
func (t *Team) PortraitList() []Portrait { return append([]Portrait(nil), t.portraitList...) }

// Profile is the per-tendency mean of the member profiles.
func (t *Team) Profile() Profile { return t.profile }

// Portrait is the per-octant mean of the member portraits.
func (t *Team) Portrait() Portrait { return t.portrait }

// MaxSector is the largest sector of the aggregate portrait.
func (t *Team) MaxSector() float64 { return t.maxSector }

// MajorOctants returns a copy of the aggregate octants that reach majorShare
// of MaxSector.
func (t *Team) MajorOctants() []Octant { return append([]Octant(nil), t.majorOctants...) }

// TeamMaxIntensity is the mean of the members' profile peaks.
func (t *Team) TeamMaxIntensity() float64 { return t.teamMaxIntensity }

// CrossFunc is the filled share of the rose drawn with maxSector as radius.
// Returns -1 for an empty portrait.
func (t *Team) CrossFunc() float64 {
	if t.maxSector == 0 {
		return -1
	}
	values := t.portrait.Values()
	return sum(values[:]) / (t.maxSector * OctantCount)
}

// Interaction relates the weakest member's top sector to the strongest one.
// Returns -1 instead of NaN when every member's top sector is empty.
func (t *Team) Interaction() float64 {
	tops := make([]float64, len(t.resultList))
	for i, r := range t.resultList {
		tops[i] = r.SortedOctants[0].Value
	}
	highest, _ := stats.Max(tops)
	lowest, _ := stats.Min(tops)
	if highest == 0 {
		return -1
	}
	return lowest / highest
}

// EmotionalComp compares the first and second half of the aggregate portrait.
// Returns -1 when either half is empty.
func (t *Team) EmotionalComp() float64 {
	values := t.portrait.Values()
	rightSum := sum(values[:OctantCount/2])
	leftSum := sum(values[OctantCount/2:])
	if leftSum == 0 || rightSum == 0 {
		return -1
	}
	if leftSum <= rightSum {
		return leftSum / rightSum
	}
	return rightSum / leftSum
}

// Loyalty divides axes 0, 1, 7 by axes 3, 4, 5; an empty denominator counts as 0.1.
func (t *Team) Loyalty() float64 {
	values := t.profile.Values()
	top := sum([]float64{values[0], values[1], values[7]})
	bottom := sum(values[3:6])
	if bottom == 0 {
		return top / loyaltyFallback
	}
	return top / bottom
}

// LeadingMemberByType returns the first member holding the largest value of octant typeIndex.
func (t *Team) LeadingMemberByType(typeIndex int) (int, error) {
	if typeIndex < 0 || typeIndex >= OctantCount {
		return -1, invalidArgument("typeIndex",
			fmt.Sprintf("octant index must be in [0, %d], got %d", OctantCount-1, typeIndex))
	}

	leader, best := 0, math.Inf(-1)
	for i, p := range t.portraitList {
		if p[typeIndex].Value > best {
			leader, best = i, p[typeIndex].Value
		}
	}
	return leader, nil
}

// Commitment sums the first attachment sub-item (matrix[3][0]) over all members.
func (t *Team) Commitment() int {
	total := 0
	for _, m := range t.matrices {
		total += m[3][0]
	}
	return total
}

// DescIndexes lists the octants reaching half of maxSector.
func (t *Team) DescIndexes() []int {
	indexes := []int{}
	for _, o := range t.portrait {
		if o.Value >= t.maxSector/2 {
			indexes = append(indexes, o.Index)
		}
	}
	return indexes
}

// NeededPsychoType lists the octants below the major threshold.
func (t *Team) NeededPsychoType() []int {
	indexes := []int{}
	for _, o := range t.portrait {
		if o.Value < t.maxSector*majorShare {
			indexes = append(indexes, o.Index)
		}
	}
	return indexes
}

// CheckIntensity reports whether the profile peak lies within [0.7, 1.3] of the
// team's average member peak.
func (t *Team) CheckIntensity(p Profile) bool {
	peak := p.Peak()
	return !(peak > t.teamMaxIntensity*intensityCeiling || peak < t.teamMaxIntensity*intensityFloor)
}

// IsSmbNeeded reports whether the team still needs someone of the given
// specialization. It is satisfied when both leading codes of the group are
// major octants of roughly equal weight.
func (t *Team) IsSmbNeeded(spec Specialization) (bool, error) {
	group, err := spec.codes()
	if err != nil {
		return false, err
	}

	majorCodes := Codes(t.majorOctants)
	if !containsCode(majorCodes, group[0]) || !containsCode(majorCodes, group[1]) {
		return true, nil
	}

	var specOctants []Octant
	for _, o := range t.majorOctants {
		if o.Code == group[0] || o.Code == group[1] {
			specOctants = append(specOctants, o)
		}
	}
	maxOctant := specOctants[1]
	if specOctants[0].Value > specOctants[1].Value {
		maxOctant = specOctants[0]
	}
	if math.Abs(specOctants[0].Value-specOctants[1].Value) < maxOctant.Value*majorShare {
		return false, nil
	}
	return true, nil
}

// Candidates filters pool down to members who would reinforce the team with
// the given specialization. needed is false when the team requires nobody,
// in which case the returned list is nil.
func (t *Team) Candidates(spec Specialization, pool []Member) (candidates []Member, needed bool, err error) {
	group, err := spec.codes()
	if err != nil {
		return nil, false, err
	}

	needed, err = t.IsSmbNeeded(spec)
	if err != nil || !needed {
		return nil, false, err
	}
	if len(t.majorOctants) == OctantCount {
		return nil, false, nil
	}

	majorCodes := Codes(t.majorOctants)
	candidates = []Member{}
	for _, m := range pool {
		profile := PersonProfile(m.DecData.Matrix)
		sorted := PersonPortrait(profile).Sorted()
		if !t.CheckIntensity(profile) {
			continue
		}
		first, second := sorted[0].Code, sorted[1].Code
		if (containsCode(majorCodes, first) && containsCode(group, second)) ||
			(containsCode(majorCodes, second) && containsCode(group, first)) {
			candidates = append(candidates, m)
		}
	}
	return candidates, true, nil
}

// Unwanted returns the members whose intensity falls outside the team band.
func (t *Team) Unwanted(members []Member) []Member {
	unwanted := []Member{}
	for _, m := range members {
		if !t.CheckIntensity(PersonProfile(m.DecData.Matrix)) {
			unwanted = append(unwanted, m)
		}
	}
	return unwanted
}

// TeamSummary gathers the aggregate values and scalar metrics of a team.
type TeamSummary struct {
	Size             int              `json:"size"`
	Profile          Profile          `json:"profile"`
	Portrait         Portrait         `json:"portrait"`
	ProfileList      []Profile        `json:"profileList"`
	MaxSector        float64          `json:"maxSector"`
	MajorOctants     []Octant         `json:"majorOctants"`
	CrossFunc        float64          `json:"crossFunc"`
	Interaction      float64          `json:"interaction"`
	EmotionalComp    float64          `json:"emotionalComp"`
	Loyalty          float64          `json:"loyalty"`
	Commitment       int              `json:"commitment"`
	DescIndexes      []int            `json:"descIndexes"`
	NeededPsychoType []int            `json:"neededPsychoType"`
	LeadingMembers   [OctantCount]int `json:"leadingMembers"`
}

// Summary collects the team's aggregates and indexes for the API response.
func (t *Team) Summary() TeamSummary {
	s := TeamSummary{
		Size:             t.Size(),
		Profile:          t.profile,
		Portrait:         t.portrait,
		ProfileList:      t.ProfileList(),
		MaxSector:        t.maxSector,
		MajorOctants:     t.MajorOctants(),
		CrossFunc:        t.CrossFunc(),
		Interaction:      t.Interaction(),
		EmotionalComp:    t.EmotionalComp(),
		Loyalty:          t.Loyalty(),
		Commitment:       t.Commitment(),
		DescIndexes:      t.DescIndexes(),
		NeededPsychoType: t.NeededPsychoType(),
	}
	for i := range s.LeadingMembers {
		s.LeadingMembers[i], _ = t.LeadingMemberByType(i)
	}
	return s
}
