package psychology

// UserResult is the full scoring of a single test.
type UserResult struct {
	Profile            Profile  `json:"profile"`
	Portrait           Portrait `json:"portrait"`
	SortedOctants      []Octant `json:"sortedOctants"`
	MainOctant         Octant   `json:"mainOctant"`
	MainPsychoTypeList []int    `json:"mainPsychoTypeList"`
	MainTendencyList   []int    `json:"mainTendencyList"`
}

// NewUserResult scores a matrix. diff is the closeness threshold for the
// dominant lists: relative to the leader for octants, absolute for tendencies.
func NewUserResult(m Matrix, diff float64) UserResult {
	profile := PersonProfile(m)
	portrait := PersonPortrait(profile)
	sorted := portrait.Sorted()

	return UserResult{
		Profile:            profile,
		Portrait:           portrait,
		SortedOctants:      sorted,
		MainOctant:         sorted[0],
		MainPsychoTypeList: mainPsychoTypes(sorted, diff),
		MainTendencyList:   mainTendencies(profile.Sorted(), diff),
	}
}

// Score scores a matrix with DefaultDiff.
func Score(m Matrix) UserResult {
	return NewUserResult(m, DefaultDiff)
}

func mainPsychoTypes(sorted []Octant, diff float64) []int {
	if sorted[0].Value-sorted[1].Value < diff*sorted[0].Value {
		return []int{sorted[0].Index, sorted[1].Index}
	}
	return []int{sorted[0].Index}
}

func mainTendencies(sorted []Tendency, diff float64) []int {
	if sorted[0].Value-sorted[1].Value < diff {
		return []int{sorted[0].Index, sorted[1].Index}
	}
	return []int{sorted[0].Index}
}

// IsTestPassed reports whether the main octant of m exceeds threshold.
// Answers given without conviction produce a flat, low portrait.
func IsTestPassed(m Matrix, threshold float64) bool {
	return Score(m).MainOctant.Value > threshold
}
