// Package dataladcli wraps the DataLad command-line client with typed
// operations used by neuroget.
//
// It exposes Client for retrieving dataset content and cloning datasets, and
// decodes DataLad JSON result records into structured values so callers can
// inspect per-path outcomes without parsing console output themselves.
package dataladcli
