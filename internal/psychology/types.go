package psychology

import (
	"encoding/json"
	"fmt"
	"sort"
)

const (
	// AnswerCount is the number of answers in one completed questionnaire.
	AnswerCount = 75
	// MatrixSize is the number of categories (rows) and sub-items (columns).
	MatrixSize = 5
	// OctantCount is the number of profile axes and portrait sectors.
	OctantCount = 8

	// Sin45 is the fixed sine of 45 degrees used for sector areas.
	Sin45 = 0.7071
	// DefaultDiff is the default closeness threshold for dominant lists.
	DefaultDiff = 0.2
	// TestThreshold is the minimal main octant value of an accepted test.
	TestThreshold = 3.75
)

// OctantCodes is the canonical portrait code order.
var OctantCodes = [OctantCount]string{"A1", "A2", "B1", "B2", "a1", "a2", "b1", "b2"}

// Matrix is the 5x5 category matrix of a single completed test.
// Row is the category, column the sub-item.
type Matrix [MatrixSize][MatrixSize]int

// NewMatrix converts a jagged slice into a Matrix, failing on any shape other than 5x5.
func NewMatrix(rows [][]int) (Matrix, error) {
	var m Matrix
	if len(rows) != MatrixSize {
		return m, invalidArgument("matrix", fmt.Sprintf("matrix must have %d rows, got %d", MatrixSize, len(rows)))
	}
	for i, row := range rows {
		if len(row) != MatrixSize {
			return m, invalidArgument(fmt.Sprintf("matrix[%d]", i),
				fmt.Sprintf("matrix row %d must have %d columns, got %d", i, MatrixSize, len(row)))
		}
		copy(m[i][:], row)
	}
	return m, nil
}

// UnmarshalJSON enforces the 5x5 shape; encoding/json would silently pad or truncate arrays.
func (m *Matrix) UnmarshalJSON(data []byte) error {
	var rows [][]int
	if err := json.Unmarshal(data, &rows); err != nil {
		return invalidArgument("matrix", "matrix must be a 5x5 array of integers")
	}
	parsed, err := NewMatrix(rows)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Rows returns the matrix as a slice of slices.
func (m Matrix) Rows() [][]int {
	rows := make([][]int, MatrixSize)
	for i := range m {
		rows[i] = append([]int(nil), m[i][:]...)
	}
	return rows
}

// Tendency is one profile axis.
type Tendency struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// Profile is the 8-axis tendency vector in index order.
type Profile [OctantCount]Tendency

// Values returns the axis values in index order.
func (p Profile) Values() [OctantCount]float64 {
	var values [OctantCount]float64
	for i, t := range p {
		values[i] = t.Value
	}
	return values
}

// Sorted returns the tendencies ordered by value descending; equal values keep index order.
func (p Profile) Sorted() []Tendency {
	sorted := append([]Tendency(nil), p[:]...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})
	return sorted
}

// Peak returns the largest tendency value.
func (p Profile) Peak() float64 {
	return p.Sorted()[0].Value
}

// Octant is one portrait sector.
type Octant struct {
	Code  string  `json:"code"`
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// Portrait is the 8-sector rose in OctantCodes order.
type Portrait [OctantCount]Octant

// Values returns the sector values in code order.
func (p Portrait) Values() [OctantCount]float64 {
	var values [OctantCount]float64
	for i, o := range p {
		values[i] = o.Value
	}
	return values
}

// Sorted returns the octants ordered by value descending; equal values keep code order.
func (p Portrait) Sorted() []Octant {
	sorted := append([]Octant(nil), p[:]...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})
	return sorted
}

// Codes returns the codes of the given octants.
func Codes(octants []Octant) []string {
	codes := make([]string, len(octants))
	for i, o := range octants {
		codes[i] = o.Code
	}
	return codes
}

// OctantIndex returns the position of code in OctantCodes, or -1.
func OctantIndex(code string) int {
	for i, c := range OctantCodes {
		if c == code {
			return i
		}
	}
	return -1
}

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
