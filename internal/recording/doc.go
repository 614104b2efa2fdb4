// Package recording assembles coupling pipeline inputs from an EDF recording
// described by a YAML manifest.
//
// The manifest names the EDF file, the signal indices carrying EEG power and
// the cardiac indices, the sampling rate, the analysis window, and a CSV
// sidecar with inter-beat intervals. Loader reads all of them into
// modelinput.Inputs, and CommandBuilder exposes the pre-flight check as the
// check-inputs command.
package recording
