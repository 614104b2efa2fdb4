// Package utils hosts shared infrastructure for the neuroget CLI: a
// Viper-backed configuration loader, a zap logger factory, and helpers for
// passing command metadata through contexts.
package utils
