package psychology

import (
	"encoding/json"
	"fmt"
)

// DecodedData is the transmitted unit of a completed test: opaque personal
// info codes plus the category matrix. It travels as the JSON array
// [[personalInfo...],[[row0],...,[row4]]].
type DecodedData struct {
	PersonalInfo []int
	Matrix       Matrix
}

// MarshalJSON encodes the two-element array form.
func (d DecodedData) MarshalJSON() ([]byte, error) {
	info := d.PersonalInfo
	if info == nil {
		info = []int{}
	}
	return json.Marshal([2]any{info, d.Matrix})
}

// UnmarshalJSON decodes the two-element array form.
func (d *DecodedData) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return invalidArgument("decData", "decoded data must be a two-element array")
	}
	if len(parts) != 2 {
		return invalidArgument("decData", fmt.Sprintf("decoded data must have 2 elements, got %d", len(parts)))
	}

	var info []int
	if err := json.Unmarshal(parts[0], &info); err != nil {
		return invalidArgument("decData[0]", "personal info must be an array of integers")
	}
	var m Matrix
	if err := json.Unmarshal(parts[1], &m); err != nil {
		return err
	}

	d.PersonalInfo = info
	d.Matrix = m
	return nil
}

// Member is a team roster entry. Only DecData takes part in scoring;
// BaseID identifies the stored test result.
type Member struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Position string      `json:"position"`
	DecData  DecodedData `json:"decData"`
	BaseID   int         `json:"baseID"`
}

// AllCandidates returns the pool members whose BaseID is not on the team.
func AllCandidates(pool, team []Member) []Member {
	onTeam := make(map[int]struct{}, len(team))
	for _, m := range team {
		onTeam[m.BaseID] = struct{}{}
	}

	candidates := make([]Member, 0, len(pool))
	for _, m := range pool {
		if _, ok := onTeam[m.BaseID]; !ok {
			candidates = append(candidates, m)
		}
	}
	return candidates
}
