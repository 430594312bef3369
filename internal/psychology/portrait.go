package psychology

// PersonPortrait turns a profile into sector areas. Each sector is the
// triangle spanned by two adjacent axes at 45 degrees. Axes are walked in
// reverse order, the wrap-around sector goes first, and the list is then
// rotated by half a turn to line up with OctantCodes.
func PersonPortrait(p Profile) Portrait {
	axes := p.Values()

	var reversed [OctantCount]float64
	for i, v := range axes {
		reversed[OctantCount-1-i] = v
	}

	areas := make([]float64, 0, OctantCount)
	for i := 0; i < OctantCount-1; i++ {
		areas = append(areas, reversed[i]*reversed[i+1]*Sin45/2)
	}
	wrap := reversed[OctantCount-1] * reversed[0] * Sin45 / 2
	areas = append([]float64{wrap}, areas...)

	half := OctantCount / 2
	rotated := append(append([]float64(nil), areas[half:]...), areas[:half]...)

	var portrait Portrait
	for i, v := range rotated {
		portrait[i] = Octant{Code: OctantCodes[i], Index: i, Value: roundFixed(v, 2)}
	}
	return portrait
}
