package ocr

// recognizeRequest is the wire request for the text recognition endpoint.
type recognizeRequest struct {
	Image string `json:"image"` // base64-encoded image bytes
}

// Candidate is one recognition hypothesis for a text region.
type Candidate struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Observation is one detected text region, in engine order
// (top-to-bottom, left-to-right as produced by the service).
type Observation struct {
	Candidates []Candidate `json:"candidates"`
}

// recognizeResponse is the wire response for the text recognition endpoint.
type recognizeResponse struct {
	Observations []Observation `json:"observations"`
}

// top returns the highest-confidence candidate, or false if the
// observation carries no candidates at all.
func (o Observation) top() (Candidate, bool) {
	if len(o.Candidates) == 0 {
		return Candidate{}, false
	}
	best := o.Candidates[0]
	for _, c := range o.Candidates[1:] {
		if c.Confidence > best.Confidence {
			best = c
		}
	}
	return best, true
}
