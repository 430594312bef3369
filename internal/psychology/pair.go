package psychology

const understandingStep = 0.125

var (
	leftHemisphere  = OctantCodes[:4]
	rightHemisphere = OctantCodes[4:]
)

// Pair holds two scored partners. All metrics are computed from the
// immutable results captured at construction.
type Pair struct {
	partner1 UserResult
	partner2 UserResult
}

// NewPair scores both matrices with DefaultDiff.
func NewPair(m1, m2 Matrix) *Pair {
	return &Pair{
		partner1: Score(m1),
		partner2: Score(m2),
	}
}

// Partner1 is the scored result of the first partner.
func (p *Pair) Partner1() UserResult { return p.partner1 }

// Partner2 is the scored result of the second partner.
func (p *Pair) Partner2() UserResult { return p.partner2 }

// Profile1 is the first partner's profile.
func (p *Pair) Profile1() Profile { return p.partner1.Profile }

// Profile2 is the second partner's profile.
func (p *Pair) Profile2() Profile { return p.partner2.Profile }

// Portrait1 is the first partner's portrait.
func (p *Pair) Portrait1() Portrait { return p.partner1.Portrait }

// Portrait2 is the second partner's portrait.
func (p *Pair) Portrait2() Portrait { return p.partner2.Portrait }

// LeadSegment1 is the first partner's main octant.
func (p *Pair) LeadSegment1() Octant { return p.partner1.MainOctant }

// LeadSegment2 is the second partner's main octant.
func (p *Pair) LeadSegment2() Octant { return p.partner2.MainOctant }

// PartnerAcceptance compares the dominant tendency values of both partners.
func (p *Pair) PartnerAcceptance() float64 {
	max1 := p.partner1.Profile[p.partner1.MainTendencyList[0]].Value
	max2 := p.partner2.Profile[p.partner2.MainTendencyList[0]].Value
	if max1 == 0 || max2 == 0 {
		return 0
	}
	return ratio(max1, max2)
}

// Understanding loses one eighth for every sector present in exactly one portrait.
func (p *Pair) Understanding() float64 {
	result := 1.0
	for i, o := range p.partner1.Portrait {
		other := p.partner2.Portrait[i].Value
		if (o.Value == 0) != (other == 0) {
			result -= understandingStep
		}
	}
	return result
}

// Attraction relates each partner's lead sector to the opposite sector of the other partner.
func (p *Pair) Attraction() [2]float64 {
	lead1, lead2 := p.LeadSegment1(), p.LeadSegment2()
	opposite1 := p.partner2.Portrait[oppositeIndex(lead1.Code)]
	opposite2 := p.partner1.Portrait[oppositeIndex(lead2.Code)]

	if (opposite1.Value == 0 && lead1.Value == 0) || (opposite2.Value == 0 && lead2.Value == 0) {
		return [2]float64{0, 0}
	}
	return [2]float64{
		ratio(opposite1.Value, lead1.Value),
		ratio(opposite2.Value, lead2.Value),
	}
}

func oppositeIndex(code string) int {
	i := OctantIndex(code)
	if i < OctantCount/2 {
		return i + OctantCount/2
	}
	return i - OctantCount/2
}

// LifeAttitudes: 1 for the same lead code, 0.5 for the same quarter,
// 0.25 for the same hemisphere, 0 otherwise.
func (p *Pair) LifeAttitudes() float64 {
	code1, code2 := p.LeadSegment1().Code, p.LeadSegment2().Code
	switch {
	case code1 == code2:
		return 1
	case code1[0] == code2[0]:
		return 0.5
	case sameHemisphere(code1, code2):
		return 0.25
	}
	return 0
}

// SimilarityThinking: 1 for the same quarter, 0.5 for the same hemisphere, 0 otherwise.
func (p *Pair) SimilarityThinking() float64 {
	code1, code2 := p.LeadSegment1().Code, p.LeadSegment2().Code
	switch {
	case code1 == code2 || code1[0] == code2[0]:
		return 1
	case sameHemisphere(code1, code2):
		return 0.5
	}
	return 0
}

func sameHemisphere(code1, code2 string) bool {
	return (containsCode(leftHemisphere, code1) && containsCode(leftHemisphere, code2)) ||
		(containsCode(rightHemisphere, code1) && containsCode(rightHemisphere, code2))
}

// PsyMaturity is the share of non-empty sectors of each portrait.
func (p *Pair) PsyMaturity() [2]float64 {
	return [2]float64{
		nonZeroShare(p.partner1.Portrait),
		nonZeroShare(p.partner2.Portrait),
	}
}

func nonZeroShare(portrait Portrait) float64 {
	count := 0
	for _, o := range portrait {
		if o.Value != 0 {
			count++
		}
	}
	return float64(count) / OctantCount
}

// Complementarity lists the lead sector indices, once when both partners share it.
func (p *Pair) Complementarity() []int {
	lead1, lead2 := p.LeadSegment1(), p.LeadSegment2()
	if lead1.Code == lead2.Code {
		return []int{lead1.Index}
	}
	return []int{lead1.Index, lead2.Index}
}

// PairSummary gathers every pair metric.
type PairSummary struct {
	Partner1           UserResult `json:"partner1"`
	Partner2           UserResult `json:"partner2"`
	PartnerAcceptance  float64    `json:"partnerAcceptance"`
	Understanding      float64    `json:"understanding"`
	Attraction         [2]float64 `json:"attraction"`
	LifeAttitudes      float64    `json:"lifeAttitudes"`
	SimilarityThinking float64    `json:"similarityThinking"`
	PsyMaturity        [2]float64 `json:"psyMaturity"`
	Complementarity    []int      `json:"complementarity"`
}

// Summary collects both partners' results and the pair indexes for the API response.
func (p *Pair) Summary() PairSummary {
	return PairSummary{
		Partner1:           p.partner1,
		Partner2:           p.partner2,
		PartnerAcceptance:  p.PartnerAcceptance(),
		Understanding:      p.Understanding(),
		Attraction:         p.Attraction(),
		LifeAttitudes:      p.LifeAttitudes(),
		SimilarityThinking: p.SimilarityThinking(),
		PsyMaturity:        p.PsyMaturity(),
		Complementarity:    p.Complementarity(),
	}
}
