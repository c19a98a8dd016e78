package redact

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"blockvault/internal/domain"
)

// PII span types reported by Scan.
const (
	TypeSSN        = "SSN"
	TypeEmail      = "EMAIL"
	TypePhone      = "PHONE"
	TypeCreditCard = "CREDIT_CARD"
	TypeAddress    = "ADDRESS"
	TypeZIP        = "ZIP"
)

// detector pairs a span type with its pattern and an optional validator for
// candidates the regex alone cannot confirm.
type detector struct {
	kind     string
	re       *regexp.Regexp
	validate func(string) bool
}

// Order matters only for equal spans: earlier detectors win.
var detectors = []detector{
	{kind: TypeSSN, re: regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
	{kind: TypeEmail, re: regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)},
	{kind: TypeCreditCard, re: regexp.MustCompile(`\b\d(?:[ \-]?\d){12,18}\b`), validate: luhnValid},
	{kind: TypePhone, re: regexp.MustCompile(`(?:\+1[ .\-]?)?\(?\d{3}\)?[ .\-]?\d{3}[ .\-]?\d{4}\b`)},
	{kind: TypeAddress, re: regexp.MustCompile(`\b\d+\s+(?:[A-Z][A-Za-z]*\s)+(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr|Court|Ct|Place|Pl|Way)\b\.?`)},
	{kind: TypeZIP, re: regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)},
}

// Scan returns every non-overlapping PII span in text, ordered by position.
func Scan(text string) []domain.RedactionMatch {
	var candidates []domain.RedactionMatch
	for _, d := range detectors {
		for _, loc := range d.re.FindAllStringIndex(text, -1) {
			s := text[loc[0]:loc[1]]
			if d.validate != nil && !d.validate(s) {
				continue
			}
			candidates = append(candidates, domain.RedactionMatch{
				Type:  d.kind,
				Start: loc[0],
				End:   loc[1],
				Text:  s,
			})
		}
	}

	// Earlier start wins; on equal start the longer match wins.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Start != candidates[j].Start {
			return candidates[i].Start < candidates[j].Start
		}
		return candidates[i].End > candidates[j].End
	})

	var out []domain.RedactionMatch
	lastEnd := 0
	for _, m := range candidates {
		if m.Start < lastEnd {
			continue
		}
		out = append(out, m)
		lastEnd = m.End
	}
	return out
}

// Apply replaces every detected span with "[REDACTED:<TYPE>]" and returns
// the rewritten text together with the matches.
func Apply(text string) domain.RedactionResult {
	matches := Scan(text)
	if len(matches) == 0 {
		return domain.RedactionResult{Redacted: text}
	}

	var b strings.Builder
	prev := 0
	for _, m := range matches {
		b.WriteString(text[prev:m.Start])
		fmt.Fprintf(&b, "[REDACTED:%s]", m.Type)
		prev = m.End
	}
	b.WriteString(text[prev:])
	return domain.RedactionResult{Redacted: b.String(), Matches: matches}
}

// luhnValid reports whether the digits of s pass the Luhn checksum, which
// filters out arbitrary long digit runs matched by the card pattern.
func luhnValid(s string) bool {
	var digits []int
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits = append(digits, int(r-'0'))
		}
	}
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := digits[i]
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
