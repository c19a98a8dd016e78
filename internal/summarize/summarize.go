package summarize

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"regexp"
	"sort"
	"strings"
	"time"

	"blockvault/internal/crypto"
	"blockvault/internal/domain"
)

const (
	// ModelName identifies the summarizer in proof metadata.
	ModelName = "extractive-tf-v1"

	// DefaultMaxLength and DefaultMinLength bound the summary in
	// characters when the caller does not specify limits.
	DefaultMaxLength = 150
	DefaultMinLength = 30

	// maxInputChars truncates pathological inputs before scoring.
	maxInputChars = 10000
)

// ErrEmptyInput is returned when there is nothing to summarize.
var ErrEmptyInput = errors.New("empty input text")

var sentenceSplit = regexp.MustCompile(`[^.!?]+[.!?]?`)

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "for": {}, "from": {}, "has": {}, "in": {}, "is": {}, "it": {},
	"its": {}, "of": {}, "on": {}, "or": {}, "that": {}, "the": {}, "to": {},
	"was": {}, "were": {}, "will": {}, "with": {}, "this": {}, "shall": {},
}

// Summarizer scores sentences by term frequency with a positional boost and
// assembles the highest-scoring ones in document order.
type Summarizer struct {
	modelHash string
	now       func() time.Time
}

// New returns a ready summarizer.
func New() *Summarizer {
	// The model hash covers everything that influences output, so any
	// change to the algorithm or its stopword list changes the hash.
	h := sha256.New()
	h.Write([]byte(ModelName))
	words := make([]string, 0, len(stopwords))
	for w := range stopwords {
		words = append(words, w)
	}
	sort.Strings(words)
	h.Write([]byte(strings.Join(words, ",")))
	return &Summarizer{
		modelHash: hex.EncodeToString(h.Sum(nil)),
		now:       time.Now,
	}
}

// ModelHash identifies the exact summarizer build.
func (s *Summarizer) ModelHash() string { return s.modelHash }

// Summarize produces a summary of at most maxLength characters (and at
// least minLength when the input allows) plus the verification metadata.
func (s *Summarizer) Summarize(text string, maxLength, minLength int) (string, domain.SummaryMetadata, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.SummaryMetadata{}, ErrEmptyInput
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	scored := text
	if len(scored) > maxInputChars {
		scored = scored[:maxInputChars]
	}

	summary := s.extract(scored, maxLength, minLength)

	meta := domain.SummaryMetadata{
		InputHash:       digestHex(text),
		OutputHash:      digestHex(summary),
		ModelHash:       s.modelHash,
		InputLength:     len(text),
		OutputLength:    len(summary),
		MaxLength:       maxLength,
		MinLength:       minLength,
		Timestamp:       s.now().UnixMilli(),
		ModelName:       ModelName,
		VerificationKey: s.VerificationKey(text, summary),
	}
	return summary, meta, nil
}

// VerificationKey binds input prefix, summary, and model into one hash.
func (s *Summarizer) VerificationKey(text, summary string) string {
	prefix := text
	if len(prefix) > 100 {
		prefix = prefix[:100]
	}
	return digestHex(prefix + summary + s.modelHash)
}

func (s *Summarizer) extract(text string, maxLength, minLength int) string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		if len(text) > maxLength {
			return text[:maxLength]
		}
		return text
	}

	freq := make(map[string]int)
	for _, sent := range sentences {
		for _, w := range tokenize(sent) {
			freq[w]++
		}
	}

	type ranked struct {
		idx   int
		score float64
	}
	scores := make([]ranked, len(sentences))
	for i, sent := range sentences {
		words := tokenize(sent)
		var sum float64
		for _, w := range words {
			sum += float64(freq[w])
		}
		score := 0.0
		if len(words) > 0 {
			score = sum / float64(len(words))
		}
		// Lead sentences carry more summary weight.
		if i == 0 {
			score *= 1.5
		} else if i == 1 {
			score *= 1.2
		}
		scores[i] = ranked{idx: i, score: score}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	picked := make(map[int]bool)
	total := 0
	for _, r := range scores {
		l := len(sentences[r.idx])
		if total > 0 && total+1+l > maxLength {
			if total >= minLength {
				break
			}
			continue
		}
		if total == 0 && l > maxLength {
			continue
		}
		picked[r.idx] = true
		total += l
		if total > 0 {
			total++ // joining space
		}
		if total >= maxLength {
			break
		}
	}
	if len(picked) == 0 {
		// Every sentence exceeds maxLength; hard-truncate the best one.
		best := sentences[scores[0].idx]
		if len(best) > maxLength {
			best = best[:maxLength]
		}
		return strings.TrimSpace(best)
	}

	var out []string
	for i, sent := range sentences {
		if picked[i] {
			out = append(out, sent)
		}
	}
	return strings.Join(out, " ")
}

func splitSentences(text string) []string {
	var out []string
	for _, m := range sentenceSplit.FindAllString(text, -1) {
		if s := strings.TrimSpace(m); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	out := fields[:0]
	for _, f := range fields {
		if _, stop := stopwords[f]; !stop && len(f) > 1 {
			out = append(out, f)
		}
	}
	return out
}

func digestHex(s string) string {
	return crypto.DigestHex([]byte(s))
}
