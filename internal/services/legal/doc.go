// Package legal implements the document workflow: notarization with
// digest-bound proofs, e-signature requests, access revocation, and PII
// redaction.
package legal
