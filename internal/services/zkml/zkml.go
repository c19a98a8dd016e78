// Package zkml produces verifiable summaries of vault files: an extractive
// summary plus metadata and a commitment-based proof a third party can
// recheck without the file content.
package zkml

import (
	"context"
	"errors"
	"strconv"

	"blockvault/internal/crypto"
	"blockvault/internal/domain"
	"blockvault/internal/services/vault"
	"blockvault/internal/summarize"
	"blockvault/internal/zkproof"
)

// Service decrypts a file through the vault and runs the summary pipeline.
type Service struct {
	vault *vault.Service
	sum   *summarize.Summarizer
}

func NewService(v *vault.Service, sum *summarize.Summarizer) *Service {
	return &Service{vault: v, sum: sum}
}

// SummarizeFile decrypts the file for the caller and returns the summary,
// its metadata, and the proof envelope.
func (s *Service) SummarizeFile(ctx context.Context, caller domain.Address, fileID, key string, maxLength, minLength int) (domain.SummaryResult, error) {
	_, content, err := s.vault.Download(ctx, caller, fileID, key)
	if err != nil {
		return domain.SummaryResult{}, err
	}
	return s.Summarize(string(content), maxLength, minLength)
}

// Summarize runs the pipeline over raw text.
func (s *Service) Summarize(text string, maxLength, minLength int) (domain.SummaryResult, error) {
	summary, meta, err := s.sum.Summarize(text, maxLength, minLength)
	if err != nil {
		return domain.SummaryResult{}, err
	}

	inputs := map[string]string{
		"input_hash":       meta.InputHash,
		"output_hash":      meta.OutputHash,
		"model_hash":       meta.ModelHash,
		"input_length":     strconv.Itoa(meta.InputLength),
		"output_length":    strconv.Itoa(meta.OutputLength),
		"verification_key": meta.VerificationKey,
	}
	signals := []string{
		zkproof.TruncatedSignal(meta.InputHash),
		zkproof.TruncatedSignal(meta.OutputHash),
		zkproof.TruncatedSignal(meta.ModelHash),
		zkproof.TruncatedSignal(meta.VerificationKey),
	}
	return domain.SummaryResult{
		Summary:  summary,
		Metadata: meta,
		Proof:    zkproof.Envelope(inputs, signals),
	}, nil
}

// VerifySummary rechecks a summary result. The output hash is recomputed
// from the summary text itself and the model hash comes from this service's
// summarizer, so a forged summary or a proof minted by a different model
// fails even when its metadata is internally consistent.
func (s *Service) VerifySummary(res *domain.SummaryResult) error {
	if err := zkproof.VerifyEnvelope(&res.Proof); err != nil {
		return err
	}
	if len(res.Proof.PublicSignals) != 4 {
		return ErrInputsMismatch
	}

	outputHash := crypto.DigestHex([]byte(res.Summary))
	in := res.Proof.CircuitInputs
	if in["output_hash"] != outputHash ||
		in["input_hash"] != res.Metadata.InputHash ||
		in["model_hash"] != s.sum.ModelHash() ||
		in["verification_key"] != res.Metadata.VerificationKey {
		return ErrInputsMismatch
	}

	sig := res.Proof.PublicSignals
	if sig[0] != zkproof.TruncatedSignal(res.Metadata.InputHash) ||
		sig[1] != zkproof.TruncatedSignal(outputHash) ||
		sig[2] != zkproof.TruncatedSignal(s.sum.ModelHash()) ||
		sig[3] != zkproof.TruncatedSignal(res.Metadata.VerificationKey) {
		return ErrInputsMismatch
	}
	return nil
}

// ErrInputsMismatch is returned when the proof's circuit inputs disagree
// with the summary metadata.
var ErrInputsMismatch = errors.New("proof inputs do not match summary metadata")
