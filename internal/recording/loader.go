package recording

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/OpenPSG/edf"
	"gonum.org/v1/gonum/mat"

	"github.com/hbclab/neuroget/internal/modelinput"
)

const (
	edfOpenErrorTemplateConstant           = "opening recording %s: %w"
	edfParseErrorTemplateConstant          = "parsing recording %s: %w"
	edfSignalErrorTemplateConstant         = "selecting signal %d: %w"
	edfSignalReadErrorTemplateConstant     = "reading signal %d: %w"
	signalLengthMismatchTemplateConstant   = "signal %d has %d samples, expected %d"
	sidecarOpenErrorTemplateConstant       = "opening interval sidecar %s: %w"
	sidecarParseErrorTemplateConstant      = "parsing interval sidecar %s: %w"
	sidecarColumnCountTemplateConstant     = "interval sidecar row %d has %d columns, expected 2"
	sidecarValueErrorTemplateConstant      = "interval sidecar row %d column %d: %w"
	sidecarEmptyMessageConstant            = "interval sidecar contains no rows"
	signalReadChunkSizeConstant            = 4096
	sidecarExpectedColumnCountConstant     = 2
)

// Load reads the recording named by the manifest into pipeline inputs.
//
// The shared time axis is synthesized from the manifest sampling rate, one
// sample per EDF reading.
func Load(manifest Manifest) (modelinput.Inputs, error) {
	recordingFile, openError := os.Open(manifest.EDFPath)
	if openError != nil {
		return modelinput.Inputs{}, fmt.Errorf(edfOpenErrorTemplateConstant, manifest.EDFPath, openError)
	}
	defer recordingFile.Close()

	recordingReader, parseError := edf.Open(recordingFile)
	if parseError != nil {
		return modelinput.Inputs{}, fmt.Errorf(edfParseErrorTemplateConstant, manifest.EDFPath, parseError)
	}

	eegChannels := make([][]float64, 0, len(manifest.EEGSignals))
	for _, signalIndex := range manifest.EEGSignals {
		channelSamples, readError := readWholeSignal(recordingReader, signalIndex)
		if readError != nil {
			return modelinput.Inputs{}, readError
		}
		eegChannels = append(eegChannels, channelSamples)
	}

	sampleCount := len(eegChannels[0])
	for channelIndex, channelSamples := range eegChannels {
		if len(channelSamples) != sampleCount {
			return modelinput.Inputs{}, fmt.Errorf(
				signalLengthMismatchTemplateConstant,
				manifest.EEGSignals[channelIndex], len(channelSamples), sampleCount,
			)
		}
	}

	signalCSI, csiError := readWholeSignal(recordingReader, manifest.CSISignal)
	if csiError != nil {
		return modelinput.Inputs{}, csiError
	}
	signalCVI, cviError := readWholeSignal(recordingReader, manifest.CVISignal)
	if cviError != nil {
		return modelinput.Inputs{}, cviError
	}

	intervalTimestamps, intervalValues, sidecarError := readIntervalSidecar(manifest.IBIPath)
	if sidecarError != nil {
		return modelinput.Inputs{}, sidecarError
	}

	eegPower := mat.NewDense(sampleCount, len(eegChannels), nil)
	for channelIndex, channelSamples := range eegChannels {
		for sampleIndex, sampleValue := range channelSamples {
			eegPower.Set(sampleIndex, channelIndex, sampleValue)
		}
	}

	timeAxis := make([]float64, sampleCount)
	for sampleIndex := range timeAxis {
		timeAxis[sampleIndex] = float64(sampleIndex) / manifest.SampleRate
	}

	return modelinput.Inputs{
		EEGPower:      eegPower,
		IBI:           intervalValues,
		TIBI:          intervalTimestamps,
		CSI:           signalCSI,
		CVI:           signalCVI,
		Time:          timeAxis,
		SampleRate:    manifest.SampleRate,
		WindowSeconds: manifest.WindowSeconds,
	}, nil
}

func readWholeSignal(recordingReader *edf.Reader, signalIndex int) ([]float64, error) {
	signalReader, signalError := recordingReader.Signal(signalIndex)
	if signalError != nil {
		return nil, fmt.Errorf(edfSignalErrorTemplateConstant, signalIndex, signalError)
	}

	signalSamples := []float64{}
	readBuffer := make([]float64, signalReadChunkSizeConstant)
	for {
		sampleCount, readError := signalReader.Read(readBuffer)
		signalSamples = append(signalSamples, readBuffer[:sampleCount]...)
		if errors.Is(readError, io.EOF) {
			return signalSamples, nil
		}
		if readError != nil {
			return nil, fmt.Errorf(edfSignalReadErrorTemplateConstant, signalIndex, readError)
		}
	}
}

// readIntervalSidecar parses a two-column CSV of interval timestamps and
// inter-beat intervals. A non-numeric first row is treated as a header.
func readIntervalSidecar(sidecarPath string) (timestamps []float64, intervals []float64, sidecarError error) {
	sidecarFile, openError := os.Open(sidecarPath)
	if openError != nil {
		return nil, nil, fmt.Errorf(sidecarOpenErrorTemplateConstant, sidecarPath, openError)
	}
	defer sidecarFile.Close()

	sidecarReader := csv.NewReader(sidecarFile)
	sidecarReader.FieldsPerRecord = -1

	rowIndex := 0
	for {
		row, readError := sidecarReader.Read()
		if errors.Is(readError, io.EOF) {
			break
		}
		if readError != nil {
			return nil, nil, fmt.Errorf(sidecarParseErrorTemplateConstant, sidecarPath, readError)
		}
		rowIndex++

		if len(row) != sidecarExpectedColumnCountConstant {
			return nil, nil, fmt.Errorf(sidecarColumnCountTemplateConstant, rowIndex, len(row))
		}

		timestampValue, timestampError := strconv.ParseFloat(row[0], 64)
		intervalValue, intervalError := strconv.ParseFloat(row[1], 64)
		if timestampError != nil || intervalError != nil {
			if rowIndex == 1 {
				continue
			}
			if timestampError != nil {
				return nil, nil, fmt.Errorf(sidecarValueErrorTemplateConstant, rowIndex, 1, timestampError)
			}
			return nil, nil, fmt.Errorf(sidecarValueErrorTemplateConstant, rowIndex, 2, intervalError)
		}

		timestamps = append(timestamps, timestampValue)
		intervals = append(intervals, intervalValue)
	}

	if len(intervals) == 0 {
		return nil, nil, errors.New(sidecarEmptyMessageConstant)
	}
	return timestamps, intervals, nil
}
