// Package aspect decodes multi-label classifier output into per-aspect sentiment.
//
// The classifier emits one label index per aspect of a domain.AspectSchema.
// Decoding zips indices with aspect names, rewrites the "not mentioned" label
// to Absent, and collapses a result with no mentioned aspect into a single
// scalar. Shape or range violations are MalformedOutputError; failures of the
// tokenizer or model are InferenceError. Nothing here retries.
package aspect
