package modelinput

import "math"

// WindowSamples derives the analysis window length in samples.
func WindowSamples(sampleRate float64, windowSeconds float64) int {
	return int(math.Round(windowSeconds * sampleRate))
}

// OutputTimeAxes validates the inputs and derives the two directional time
// axes consumed downstream.
//
// The heart-to-brain axis keeps the first T-Ws samples of the input time
// vector; the brain-to-heart axis keeps the interior samples [Ws, T-Ws).
// Both are copies, so mutating them leaves the inputs untouched.
func (inputs Inputs) OutputTimeAxes() (heartToBrainAxis []float64, brainToHeartAxis []float64, validationError error) {
	if validationError = inputs.Validate(); validationError != nil {
		return nil, nil, validationError
	}

	windowSamples := WindowSamples(inputs.SampleRate, inputs.WindowSeconds)
	timeDimension := inputs.TimeDimension()

	heartToBrainAxis = make([]float64, timeDimension-windowSamples)
	copy(heartToBrainAxis, inputs.Time[:timeDimension-windowSamples])

	brainToHeartAxis = make([]float64, timeDimension-2*windowSamples)
	copy(brainToHeartAxis, inputs.Time[windowSamples:timeDimension-windowSamples])

	return heartToBrainAxis, brainToHeartAxis, nil
}
