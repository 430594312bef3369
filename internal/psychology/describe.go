package psychology

import "fmt"

// RangedDesc is a description applying to values in (Range[0], Range[1]].
type RangedDesc struct {
	Desc  string     `json:"desc"`
	Range [2]float64 `json:"range"`
}

// DescList is a titled set of ranged descriptions.
type DescList struct {
	Title   string       `json:"title"`
	Options []RangedDesc `json:"options"`
}

// DescWithStatus is the description picked for a value. Status is 0 when
// the first option matched and 1 otherwise.
type DescWithStatus struct {
	Title  string `json:"title"`
	Desc   string `json:"desc"`
	Status int    `json:"status"`
}

// DescByRange picks the first option whose range holds value.
func DescByRange(value float64, list DescList) DescWithStatus {
	index := IndexByRange(value, list.Options)
	desc := ""
	if index >= 0 {
		desc = list.Options[index].Desc
	}

	status := 1
	switch index {
	case 0:
		status = 0
	case len(list.Options):
		status = 2
	}
	return DescWithStatus{Title: list.Title, Desc: desc, Status: status}
}

// IndexByRange returns the index of the first option whose range holds value, or -1.
func IndexByRange(value float64, options []RangedDesc) int {
	for i, o := range options {
		if value > o.Range[0] && value <= o.Range[1] {
			return i
		}
	}
	return -1
}

// DefaultKeyBreakpoints split a 0..1 intensity into four key results.
var DefaultKeyBreakpoints = [3]float64{0.2, 0.5, 0.8}

// KeyResult picks one of four results by comparing value against three ascending breakpoints.
func KeyResult[T any](value float64, results [4]T, breakpoints [3]float64) T {
	switch {
	case value < breakpoints[0]:
		return results[0]
	case value < breakpoints[1]:
		return results[1]
	case value < breakpoints[2]:
		return results[2]
	}
	return results[3]
}

// Sex selects the column of a famous-person table.
type Sex int

const (
	SexMale Sex = iota
	SexFemale
	SexOther
)

// FamousList is indexed by octant, then intensity bucket, then Sex.
type FamousList [][][]string

// FamousPerson is a well-known person matching an octant intensity.
type FamousPerson struct {
	Person  string `json:"person"`
	Picture string `json:"picture"`
}

// DefaultFamousRange bounds the three intensity buckets.
var DefaultFamousRange = [4]float64{0, 42.35, 140, 1000}

// Famous returns the famous person for the octant's intensity bucket, or nil
// when the value is outside bounds or the table has no entry.
func Famous(octant Octant, list FamousList, sex Sex, bounds [4]float64) *FamousPerson {
	value := octant.Value
	if value < bounds[0] || value > bounds[3] {
		return nil
	}

	bucket := 2
	switch {
	case value < bounds[1]:
		bucket = 0
	case value < bounds[2]:
		bucket = 1
	}

	if octant.Index < 0 || octant.Index >= len(list) ||
		bucket >= len(list[octant.Index]) ||
		int(sex) < 0 || int(sex) >= len(list[octant.Index][bucket]) {
		return nil
	}
	return &FamousPerson{
		Person:  list[octant.Index][bucket][sex],
		Picture: fmt.Sprintf("%d_%d_%d", octant.Index, bucket, sex),
	}
}
