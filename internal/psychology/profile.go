package psychology

// profileSource maps each profile index to the matrix row and polarity it reads.
// Row 2 feeds index 3 with its positive part and index 7 with its negative part,
// the reverse of every other row.
var profileSource = [OctantCount]struct {
	row      int
	positive bool
}{
	{row: 1, positive: false},
	{row: 4, positive: false},
	{row: 0, positive: false},
	{row: 2, positive: true},
	{row: 1, positive: true},
	{row: 4, positive: true},
	{row: 0, positive: true},
	{row: 2, positive: false},
}

// PersonProfile splits every matrix row into its negative and positive
// magnitude and remaps them onto the 8 profile axes.
func PersonProfile(m Matrix) Profile {
	var split [MatrixSize][2]int
	for i, row := range m {
		neg, pos := 0, 0
		for _, v := range row {
			switch {
			case v > 0:
				pos += v
			case v < 0:
				neg -= v
			}
		}
		split[i] = [2]int{neg, pos}
	}

	var profile Profile
	for i, src := range profileSource {
		value := split[src.row][0]
		if src.positive {
			value = split[src.row][1]
		}
		profile[i] = Tendency{Index: i, Value: float64(value)}
	}
	return profile
}
