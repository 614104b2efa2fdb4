package modelinput

import (
	"fmt"
	"math"
)

const (
	fieldNameEEGPowerConstant      = "eeg_power"
	fieldNameIBIConstant           = "ibi"
	fieldNameTIBIConstant          = "t_ibi"
	fieldNameCSIConstant           = "csi"
	fieldNameCVIConstant           = "cvi"
	fieldNameTimeConstant          = "time"
	fieldNameSampleRateConstant    = "sample_rate"
	fieldNameWindowSecondsConstant = "window_seconds"
	fieldNameWindowSamplesConstant = "window_samples"

	validationErrorTemplateConstant        = "invalid input %s: %s"
	missingValueMessageConstant            = "required and must not be empty"
	positiveValueMessageConstant           = "must be positive"
	nonFiniteValueTemplateConstant         = "contains a non-finite value at index %d"
	nonFiniteMatrixValueTemplateConstant   = "contains a non-finite value at row %d column %d"
	lengthMismatchTemplateConstant         = "length %d does not match time dimension %d"
	ibiLengthMismatchTemplateConstant      = "length %d does not match ibi length %d"
	notStrictlyIncreasingTemplateConstant  = "not strictly increasing at index %d"
	nonPositiveIntervalTemplateConstant    = "non-positive interval %g at index %d"
	windowTooSmallTemplateConstant         = "derived window of %d samples is smaller than one sample"
	windowExceedsSeriesTemplateConstant    = "window of %d samples leaves no interior for %d time samples"
)

// ValidationError reports the first precondition an input set violates.
type ValidationError struct {
	FieldName string
	Message   string
}

// Error describes the violated precondition.
func (validationError ValidationError) Error() string {
	return fmt.Sprintf(validationErrorTemplateConstant, validationError.FieldName, validationError.Message)
}

// Validate checks every precondition of the coupling pipeline and returns the
// first violation found.
func (inputs Inputs) Validate() error {
	if validationError := inputs.validateParameters(); validationError != nil {
		return validationError
	}
	if validationError := inputs.validateShapes(); validationError != nil {
		return validationError
	}
	if validationError := inputs.validateValues(); validationError != nil {
		return validationError
	}
	return inputs.validateWindow()
}

func (inputs Inputs) validateParameters() error {
	if !(inputs.SampleRate > 0) || math.IsInf(inputs.SampleRate, 0) {
		return ValidationError{FieldName: fieldNameSampleRateConstant, Message: positiveValueMessageConstant}
	}
	if !(inputs.WindowSeconds > 0) || math.IsInf(inputs.WindowSeconds, 0) {
		return ValidationError{FieldName: fieldNameWindowSecondsConstant, Message: positiveValueMessageConstant}
	}
	return nil
}

func (inputs Inputs) validateShapes() error {
	timeDimension := inputs.TimeDimension()
	if timeDimension == 0 || inputs.ChannelCount() == 0 {
		return ValidationError{FieldName: fieldNameEEGPowerConstant, Message: missingValueMessageConstant}
	}

	alignedArrays := []struct {
		fieldName string
		values    []float64
	}{
		{fieldName: fieldNameTimeConstant, values: inputs.Time},
		{fieldName: fieldNameCSIConstant, values: inputs.CSI},
		{fieldName: fieldNameCVIConstant, values: inputs.CVI},
	}
	for _, alignedArray := range alignedArrays {
		if len(alignedArray.values) == 0 {
			return ValidationError{FieldName: alignedArray.fieldName, Message: missingValueMessageConstant}
		}
		if len(alignedArray.values) != timeDimension {
			return ValidationError{
				FieldName: alignedArray.fieldName,
				Message:   fmt.Sprintf(lengthMismatchTemplateConstant, len(alignedArray.values), timeDimension),
			}
		}
	}

	if len(inputs.IBI) == 0 {
		return ValidationError{FieldName: fieldNameIBIConstant, Message: missingValueMessageConstant}
	}
	if len(inputs.TIBI) == 0 {
		return ValidationError{FieldName: fieldNameTIBIConstant, Message: missingValueMessageConstant}
	}
	if len(inputs.TIBI) != len(inputs.IBI) {
		return ValidationError{
			FieldName: fieldNameTIBIConstant,
			Message:   fmt.Sprintf(ibiLengthMismatchTemplateConstant, len(inputs.TIBI), len(inputs.IBI)),
		}
	}
	return nil
}

func (inputs Inputs) validateValues() error {
	timeDimension, channelCount := inputs.EEGPower.Dims()
	for rowIndex := 0; rowIndex < timeDimension; rowIndex++ {
		for columnIndex := 0; columnIndex < channelCount; columnIndex++ {
			matrixValue := inputs.EEGPower.At(rowIndex, columnIndex)
			if math.IsNaN(matrixValue) || math.IsInf(matrixValue, 0) {
				return ValidationError{
					FieldName: fieldNameEEGPowerConstant,
					Message:   fmt.Sprintf(nonFiniteMatrixValueTemplateConstant, rowIndex, columnIndex),
				}
			}
		}
	}

	finiteArrays := []struct {
		fieldName string
		values    []float64
	}{
		{fieldName: fieldNameIBIConstant, values: inputs.IBI},
		{fieldName: fieldNameTIBIConstant, values: inputs.TIBI},
		{fieldName: fieldNameCSIConstant, values: inputs.CSI},
		{fieldName: fieldNameCVIConstant, values: inputs.CVI},
		{fieldName: fieldNameTimeConstant, values: inputs.Time},
	}
	for _, finiteArray := range finiteArrays {
		if violationIndex := firstNonFiniteIndex(finiteArray.values); violationIndex >= 0 {
			return ValidationError{
				FieldName: finiteArray.fieldName,
				Message:   fmt.Sprintf(nonFiniteValueTemplateConstant, violationIndex),
			}
		}
	}

	for intervalIndex, intervalValue := range inputs.IBI {
		if intervalValue <= 0 {
			return ValidationError{
				FieldName: fieldNameIBIConstant,
				Message:   fmt.Sprintf(nonPositiveIntervalTemplateConstant, intervalValue, intervalIndex),
			}
		}
	}

	if violationIndex := firstNonIncreasingIndex(inputs.Time); violationIndex >= 0 {
		return ValidationError{
			FieldName: fieldNameTimeConstant,
			Message:   fmt.Sprintf(notStrictlyIncreasingTemplateConstant, violationIndex),
		}
	}
	if violationIndex := firstNonIncreasingIndex(inputs.TIBI); violationIndex >= 0 {
		return ValidationError{
			FieldName: fieldNameTIBIConstant,
			Message:   fmt.Sprintf(notStrictlyIncreasingTemplateConstant, violationIndex),
		}
	}
	return nil
}

func (inputs Inputs) validateWindow() error {
	windowSamples := WindowSamples(inputs.SampleRate, inputs.WindowSeconds)
	if windowSamples < 1 {
		return ValidationError{
			FieldName: fieldNameWindowSamplesConstant,
			Message:   fmt.Sprintf(windowTooSmallTemplateConstant, windowSamples),
		}
	}

	timeDimension := inputs.TimeDimension()
	if timeDimension <= 2*windowSamples {
		return ValidationError{
			FieldName: fieldNameWindowSamplesConstant,
			Message:   fmt.Sprintf(windowExceedsSeriesTemplateConstant, windowSamples, timeDimension),
		}
	}
	return nil
}

func firstNonFiniteIndex(values []float64) int {
	for valueIndex, value := range values {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return valueIndex
		}
	}
	return -1
}

func firstNonIncreasingIndex(values []float64) int {
	for valueIndex := 1; valueIndex < len(values); valueIndex++ {
		if values[valueIndex] <= values[valueIndex-1] {
			return valueIndex
		}
	}
	return -1
}
