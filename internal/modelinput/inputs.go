package modelinput

import "gonum.org/v1/gonum/mat"

// Inputs carries the arrays consumed by the heart-brain coupling pipeline.
//
// EEGPower holds one row per sample and one column per channel; its row count
// defines the time dimension every aligned array must match.
type Inputs struct {
	// EEGPower is the time-by-channel EEG band power matrix.
	EEGPower *mat.Dense
	// IBI lists inter-beat intervals in seconds.
	IBI []float64
	// TIBI lists the timestamp of each inter-beat interval.
	TIBI []float64
	// CSI is the cardiac sympathetic index aligned to Time.
	CSI []float64
	// CVI is the cardiac vagal index aligned to Time.
	CVI []float64
	// Time is the shared time axis for EEGPower, CSI, and CVI.
	Time []float64
	// SampleRate is the sampling rate of Time in Hz.
	SampleRate float64
	// WindowSeconds is the analysis window duration in seconds.
	WindowSeconds float64
}

// TimeDimension reports the number of samples along the time axis.
func (inputs Inputs) TimeDimension() int {
	if inputs.EEGPower == nil {
		return 0
	}
	sampleCount, _ := inputs.EEGPower.Dims()
	return sampleCount
}

// ChannelCount reports the number of EEG channels.
func (inputs Inputs) ChannelCount() int {
	if inputs.EEGPower == nil {
		return 0
	}
	_, channelCount := inputs.EEGPower.Dims()
	return channelCount
}
