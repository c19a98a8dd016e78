package domain

// Proof is the groth16-shaped proof envelope exchanged on the wire. The
// point fields mirror the snarkjs layout (pi_a, pi_b, pi_c); Raw carries the
// serialized gnark proof when the envelope backs a real Groth16 statement.
type Proof struct {
	PiA           [3]string         `json:"pi_a"`
	PiB           [3][2]string      `json:"pi_b"`
	PiC           [3]string         `json:"pi_c"`
	Protocol      string            `json:"protocol"` // always "groth16"
	Curve         string            `json:"curve"`    // always "bn128"
	PublicSignals []string          `json:"public_signals"`
	Commitment    string            `json:"commitment"`
	CircuitInputs map[string]string `json:"circuit_inputs,omitempty"`
	Raw           []byte            `json:"proof_bytes,omitempty"`
}

// WellFormed checks the structural invariants every proof must satisfy
// before any cryptographic verification is attempted.
func (p *Proof) WellFormed() bool {
	if p == nil {
		return false
	}
	return p.Protocol == "groth16" && p.Curve == "bn128" && len(p.PublicSignals) > 0
}

// SummaryMetadata binds a generated summary to its input for verification.
type SummaryMetadata struct {
	InputHash       string `json:"input_hash"`
	OutputHash      string `json:"output_hash"`
	ModelHash       string `json:"model_hash"`
	InputLength     int    `json:"input_length"`
	OutputLength    int    `json:"output_length"`
	MaxLength       int    `json:"max_length"`
	MinLength       int    `json:"min_length"`
	Timestamp       int64  `json:"timestamp"` // unix milliseconds
	ModelName       string `json:"model_name"`
	VerificationKey string `json:"verification_key"`
}

// SummaryResult is the full response of the verifiable summary pipeline.
type SummaryResult struct {
	Summary  string          `json:"summary"`
	Metadata SummaryMetadata `json:"metadata"`
	Proof    Proof           `json:"proof"`
}
