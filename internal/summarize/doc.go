// Package summarize generates document summaries with the metadata needed
// for verifiable-inference envelopes: input/output hashes, a model hash, and
// a verification key binding the three together.
//
// The summarizer is extractive and fully deterministic, so two runs over the
// same input produce byte-identical summaries and hashes.
package summarize
