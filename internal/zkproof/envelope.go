package zkproof

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"blockvault/internal/domain"
)

// Commitment hashes circuit inputs into the envelope commitment: SHA-256
// over "key:value" pairs in sorted key order.
func Commitment(inputs map[string]string) string {
	keys := make([]string, 0, len(inputs))
	for k := range inputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(inputs[k])
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// VerifyCommitment reports whether commitment matches inputs.
func VerifyCommitment(commitment string, inputs map[string]string) bool {
	return commitment == Commitment(inputs)
}

// Envelope assembles the groth16-shaped proof object around a commitment.
// The point values are deterministic functions of the commitment, so any
// tampering with the inputs breaks both the commitment and the points.
func Envelope(inputs map[string]string, publicSignals []string) domain.Proof {
	commitment := Commitment(inputs)
	return domain.Proof{
		PiA:           proofPoint(commitment, "a"),
		PiB:           proofMatrix(commitment, "b"),
		PiC:           proofPoint(commitment, "c"),
		Protocol:      "groth16",
		Curve:         "bn128",
		PublicSignals: publicSignals,
		Commitment:    commitment,
		CircuitInputs: inputs,
	}
}

// VerifyEnvelope checks the structural and commitment invariants shared by
// every proof envelope.
func VerifyEnvelope(p *domain.Proof) error {
	if !p.WellFormed() {
		return fmt.Errorf("malformed proof envelope")
	}
	if !VerifyCommitment(p.Commitment, p.CircuitInputs) {
		return fmt.Errorf("commitment does not match circuit inputs")
	}
	if p.PiA != proofPoint(p.Commitment, "a") ||
		p.PiB != proofMatrix(p.Commitment, "b") ||
		p.PiC != proofPoint(p.Commitment, "c") {
		return fmt.Errorf("proof points do not match commitment")
	}
	return nil
}

// TruncatedSignal shortens a hash for use as a public signal.
func TruncatedSignal(hash string) string {
	if len(hash) > 16 {
		return hash[:16]
	}
	return hash
}

// proofPoint derives three small field values from the commitment.
func proofPoint(commitment, suffix string) [3]string {
	var out [3]string
	for i := range out {
		out[i] = strconv.Itoa(derive(commitment, suffix, i))
	}
	return out
}

// proofMatrix derives a 3x2 matrix of small field values.
func proofMatrix(commitment, suffix string) [3][2]string {
	var out [3][2]string
	for i := range out {
		for j := range out[i] {
			out[i][j] = strconv.Itoa(derive(commitment, suffix, i*2+j+100))
		}
	}
	return out
}

// derive expands the commitment into a value in [1, 999].
func derive(commitment, suffix string, n int) int {
	h := sha256.Sum256([]byte(commitment + ":" + suffix + ":" + strconv.Itoa(n)))
	return int(binary.BigEndian.Uint32(h[:4])%999) + 1
}
