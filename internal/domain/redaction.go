package domain

// RedactionMatch is a detected PII span with byte offsets into the scanned
// text. End is exclusive.
type RedactionMatch struct {
	Type  string `json:"type"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// RedactionResult pairs the redacted text with the spans that were replaced.
type RedactionResult struct {
	Redacted string           `json:"redacted"`
	Matches  []RedactionMatch `json:"matches"`
}
