package recording

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	manifestReadErrorTemplateConstant     = "reading manifest %s: %w"
	manifestDecodeErrorTemplateConstant   = "decoding manifest %s: %w"
	manifestFieldErrorTemplateConstant    = "manifest field %s: %s"
	requiredFieldMessageConstant          = "required"
	positiveFieldMessageConstant          = "must be positive"
	negativeSignalIndexMessageConstant    = "signal index must not be negative"
	edfPathManifestFieldNameConstant      = "edf_path"
	sampleRateManifestFieldNameConstant   = "sample_rate"
	windowManifestFieldNameConstant       = "window_seconds"
	eegSignalsManifestFieldNameConstant   = "eeg_signals"
	csiSignalManifestFieldNameConstant    = "csi_signal"
	cviSignalManifestFieldNameConstant    = "cvi_signal"
	ibiPathManifestFieldNameConstant      = "ibi_path"
)

// Manifest describes where a recording's arrays come from.
type Manifest struct {
	EDFPath       string  `yaml:"edf_path"`
	SampleRate    float64 `yaml:"sample_rate"`
	WindowSeconds float64 `yaml:"window_seconds"`
	EEGSignals    []int   `yaml:"eeg_signals"`
	CSISignal     int     `yaml:"csi_signal"`
	CVISignal     int     `yaml:"cvi_signal"`
	IBIPath       string  `yaml:"ibi_path"`
}

// ManifestError reports an invalid manifest field.
type ManifestError struct {
	FieldName string
	Message   string
}

// Error describes the invalid field.
func (manifestError ManifestError) Error() string {
	return fmt.Sprintf(manifestFieldErrorTemplateConstant, manifestError.FieldName, manifestError.Message)
}

// LoadManifest reads and validates a manifest file. Relative data paths are
// resolved against the manifest's directory.
func LoadManifest(manifestPath string) (Manifest, error) {
	manifestContents, readError := os.ReadFile(manifestPath)
	if readError != nil {
		return Manifest{}, fmt.Errorf(manifestReadErrorTemplateConstant, manifestPath, readError)
	}

	var manifest Manifest
	if decodeError := yaml.Unmarshal(manifestContents, &manifest); decodeError != nil {
		return Manifest{}, fmt.Errorf(manifestDecodeErrorTemplateConstant, manifestPath, decodeError)
	}

	if validationError := manifest.Validate(); validationError != nil {
		return Manifest{}, validationError
	}

	manifestDirectory := filepath.Dir(manifestPath)
	manifest.EDFPath = resolveDataPath(manifestDirectory, manifest.EDFPath)
	manifest.IBIPath = resolveDataPath(manifestDirectory, manifest.IBIPath)

	return manifest, nil
}

// Validate checks the manifest invariants.
func (manifest Manifest) Validate() error {
	if len(manifest.EDFPath) == 0 {
		return ManifestError{FieldName: edfPathManifestFieldNameConstant, Message: requiredFieldMessageConstant}
	}
	if !(manifest.SampleRate > 0) {
		return ManifestError{FieldName: sampleRateManifestFieldNameConstant, Message: positiveFieldMessageConstant}
	}
	if !(manifest.WindowSeconds > 0) {
		return ManifestError{FieldName: windowManifestFieldNameConstant, Message: positiveFieldMessageConstant}
	}
	if len(manifest.EEGSignals) == 0 {
		return ManifestError{FieldName: eegSignalsManifestFieldNameConstant, Message: requiredFieldMessageConstant}
	}
	for _, signalIndex := range manifest.EEGSignals {
		if signalIndex < 0 {
			return ManifestError{FieldName: eegSignalsManifestFieldNameConstant, Message: negativeSignalIndexMessageConstant}
		}
	}
	if manifest.CSISignal < 0 {
		return ManifestError{FieldName: csiSignalManifestFieldNameConstant, Message: negativeSignalIndexMessageConstant}
	}
	if manifest.CVISignal < 0 {
		return ManifestError{FieldName: cviSignalManifestFieldNameConstant, Message: negativeSignalIndexMessageConstant}
	}
	if len(manifest.IBIPath) == 0 {
		return ManifestError{FieldName: ibiPathManifestFieldNameConstant, Message: requiredFieldMessageConstant}
	}
	return nil
}

func resolveDataPath(manifestDirectory string, dataPath string) string {
	if filepath.IsAbs(dataPath) {
		return dataPath
	}
	return filepath.Join(manifestDirectory, dataPath)
}
