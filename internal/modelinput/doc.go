// Package modelinput validates the arrays feeding the heart-brain coupling
// pipeline before any windowed computation runs.
//
// Validate enforces the numeric preconditions the pipeline depends on:
// matching array shapes, finite values, positive inter-beat intervals,
// strictly increasing time axes, and a window size that leaves room for both
// directional analyses. OutputTimeAxes derives the heart-to-brain and
// brain-to-heart time axes from validated inputs.
package modelinput
