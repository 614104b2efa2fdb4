package recording

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hbclab/neuroget/internal/modelinput"
)

const (
	commandUseConstant                    = "check-inputs <manifest>"
	commandShortDescriptionConstant       = "Validate coupling pipeline inputs for a recording"
	commandLongDescriptionConstant        = "check-inputs loads the recording described by a YAML manifest and verifies every precondition of the heart-brain coupling pipeline, printing the derived analysis dimensions on success."
	commandExecutionErrorTemplateConstant = "input check failed: %w"
	manifestArgumentRequiredConstant      = "exactly one manifest path is required"
	summaryTemplateConstant               = "inputs valid: %d samples, %d channels, window %d samples, heart-to-brain axis %d, brain-to-heart axis %d\n"
	inputsValidatedMessageConstant        = "pipeline inputs validated"
	logFieldManifestPathConstant          = "manifest_path"
	logFieldSampleCountConstant           = "sample_count"
	logFieldChannelCountConstant          = "channel_count"
	logFieldWindowSamplesConstant         = "window_samples"
)

var errManifestArgumentRequired = errors.New(manifestArgumentRequiredConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the Cobra command for the pre-flight input check.
type CommandBuilder struct {
	LoggerProvider LoggerProvider
}

// Build constructs the check-inputs command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) != 1 {
		return errManifestArgumentRequired
	}
	manifestPath := arguments[0]

	manifest, manifestError := LoadManifest(manifestPath)
	if manifestError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, manifestError)
	}

	inputs, loadError := Load(manifest)
	if loadError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, loadError)
	}

	heartToBrainAxis, brainToHeartAxis, validationError := inputs.OutputTimeAxes()
	if validationError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, validationError)
	}

	windowSamples := modelinput.WindowSamples(inputs.SampleRate, inputs.WindowSeconds)
	builder.resolveLogger().Info(
		inputsValidatedMessageConstant,
		zap.String(logFieldManifestPathConstant, manifestPath),
		zap.Int(logFieldSampleCountConstant, inputs.TimeDimension()),
		zap.Int(logFieldChannelCountConstant, inputs.ChannelCount()),
		zap.Int(logFieldWindowSamplesConstant, windowSamples),
	)

	fmt.Fprintf(
		command.OutOrStdout(),
		summaryTemplateConstant,
		inputs.TimeDimension(),
		inputs.ChannelCount(),
		windowSamples,
		len(heartToBrainAxis),
		len(brainToHeartAxis),
	)
	return nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
