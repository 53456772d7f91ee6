// ABOUTME: Answer is the generated response with citations back to passages
// ABOUTME: Grounded=false flags answers not fully traceable to retrieved text
package models

// Citation ties a claim in the answer back to a supplied passage
type Citation struct {
	Label   string           `json:"label"` // passage marker, e.g. "P1"
	Passage RetrievedPassage `json:"passage"`
}

// Answer is the generated response for a legal question. Ephemeral.
type Answer struct {
	Text      string     `json:"text"`
	Citations []Citation `json:"citations"`
	Grounded  bool       `json:"grounded"`
}
