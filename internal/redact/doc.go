// Package redact scans text for personally identifiable information and
// replaces the detected spans with typed placeholders.
//
// Detection is a single linear pass of per-type regular expressions over the
// input; overlapping candidates are resolved by position (earlier start
// wins, longer match wins ties).
package redact
