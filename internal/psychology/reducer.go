package psychology

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var errBlankAnswer = errors.New("answer is blank")

// AnswerValue is a raw questionnaire value. Clients send it either as a
// JSON number or as a numeric string.
type AnswerValue string

// UnmarshalJSON accepts a JSON string, number or null.
func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "null":
		*v = ""
		return nil
	case strings.HasPrefix(trimmed, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = AnswerValue(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("answer value must be a number or numeric string: %w", err)
	}
	*v = AnswerValue(n.String())
	return nil
}

// Blank reports whether the value is missing.
func (v AnswerValue) Blank() bool {
	return strings.TrimSpace(string(v)) == ""
}

// Int parses the value as an integer. Blank, non-numeric and fractional values fail.
func (v AnswerValue) Int() (int, error) {
	s := strings.TrimSpace(string(v))
	if s == "" {
		return 0, errBlankAnswer
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return int(f), nil
}

// RawAnswer is one questionnaire answer.
type RawAnswer struct {
	ID    string      `json:"id"`
	Value AnswerValue `json:"value"`
}

// ReduceAnswers folds 75 ordered answers into the category matrix.
// Cell [i][j] sums the answers at i+15j, i+15j+5 and i+15j+10.
func ReduceAnswers(answers []RawAnswer) (Matrix, error) {
	var m Matrix
	if len(answers) != AnswerCount {
		return m, invalidArgument("answers",
			fmt.Sprintf("expected %d answers, got %d", AnswerCount, len(answers)))
	}

	values := make([]int, AnswerCount)
	for i, a := range answers {
		v, err := a.Value.Int()
		if err != nil {
			return m, invalidArgument(fmt.Sprintf("answers[%d]", i),
				fmt.Sprintf("answer %d (id %q): %v", i, a.ID, err))
		}
		values[i] = v
	}

	for i := 0; i < MatrixSize; i++ {
		k := i
		for j := 0; j < MatrixSize; j++ {
			for pick := 0; pick < 3; pick++ {
				m[i][j] += values[k]
				k += MatrixSize
			}
		}
	}
	return m, nil
}

// FirstUnanswered returns the index of the first blank answer, or -1.
func FirstUnanswered(answers []RawAnswer) int {
	for i, a := range answers {
		if a.Value.Blank() {
			return i
		}
	}
	return -1
}
