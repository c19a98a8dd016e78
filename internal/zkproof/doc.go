// Package zkproof produces and checks the proof envelopes attached to
// notarized documents and verifiable summaries.
//
// Notarization proofs are real Groth16 proofs (gnark, BN254) over a MiMC
// preimage statement bound to the document digest. Summary proofs reuse the
// same envelope shape but are commitment-based: deterministic proof points
// derived from a SHA-256 commitment over the circuit inputs, verified by
// recomputing the commitment.
package zkproof
