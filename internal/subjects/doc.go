// Package subjects tracks the study roster and per-modality exclusion lists
// for the dataset handled by neuroget.
//
// It derives the subjects eligible for download given a set of required
// modalities, formats and parses BIDS-style subject identifiers, and offers
// CommandBuilder for the Cobra command that prints the eligible list.
package subjects
