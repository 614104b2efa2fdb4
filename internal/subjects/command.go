package subjects

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	commandUseConstant                    = "subjects"
	commandShortDescriptionConstant       = "List subjects eligible for download"
	commandLongDescriptionConstant        = "subjects prints the roster members that carry every required modality, after applying the configured exclusion lists."
	commandExecutionErrorTemplateConstant = "subject listing failed: %w"
	unexpectedArgumentsMessageConstant    = "subjects does not accept positional arguments"
	flagRequireNameConstant               = "require"
	flagRequireDescriptionConstant        = "Modalities a subject must carry (eeg, ecg, ppg, pupillometry); defaults to all"
	flagFormatNameConstant                = "format"
	flagFormatDescriptionConstant         = "Output format (text or yaml)"
	formatTextConstant                    = "text"
	formatYAMLConstant                    = "yaml"
	unsupportedFormatTemplateConstant     = "unsupported output format: %s"
	eligibleSubjectsMessageConstant       = "eligible subjects resolved"
	logFieldSubjectCountConstant          = "subject_count"
	logFieldRequiredModalitiesConstant    = "required_modalities"
	textOutputLineTemplateConstant        = "%s\n"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the catalog configuration for the command.
type ConfigurationProvider func() CatalogConfiguration

// CommandBuilder assembles the Cobra command for subject listing.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
}

// Build constructs the subjects command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().StringSlice(flagRequireNameConstant, nil, flagRequireDescriptionConstant)
	command.Flags().String(flagFormatNameConstant, formatTextConstant, flagFormatDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	requiredModalities, modalitiesError := parseRequiredModalities(command)
	if modalitiesError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, modalitiesError)
	}

	outputFormat, _ := command.Flags().GetString(flagFormatNameConstant)
	normalizedFormat := strings.ToLower(strings.TrimSpace(outputFormat))
	if normalizedFormat != formatTextConstant && normalizedFormat != formatYAMLConstant {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, fmt.Errorf(unsupportedFormatTemplateConstant, outputFormat))
	}

	catalog := builder.resolveCatalog()
	eligibleIdentifiers, eligibilityError := catalog.EligibleSubjectIdentifiers(requiredModalities)
	if eligibilityError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, eligibilityError)
	}

	builder.resolveLogger().Info(
		eligibleSubjectsMessageConstant,
		zap.Int(logFieldSubjectCountConstant, len(eligibleIdentifiers)),
		zap.Strings(logFieldRequiredModalitiesConstant, modalityNames(requiredModalities)),
	)

	if normalizedFormat == formatYAMLConstant {
		encodedSubjects, encodingError := yaml.Marshal(eligibleIdentifiers)
		if encodingError != nil {
			return fmt.Errorf(commandExecutionErrorTemplateConstant, encodingError)
		}
		_, writeError := command.OutOrStdout().Write(encodedSubjects)
		return writeError
	}

	for _, subjectIdentifier := range eligibleIdentifiers {
		fmt.Fprintf(command.OutOrStdout(), textOutputLineTemplateConstant, subjectIdentifier)
	}
	return nil
}

func parseRequiredModalities(command *cobra.Command) ([]Modality, error) {
	rawModalities, _ := command.Flags().GetStringSlice(flagRequireNameConstant)
	requiredModalities := make([]Modality, 0, len(rawModalities))
	for _, rawModality := range rawModalities {
		parsedModality, parseError := ParseModality(rawModality)
		if parseError != nil {
			return nil, parseError
		}
		requiredModalities = append(requiredModalities, parsedModality)
	}
	return requiredModalities, nil
}

func modalityNames(modalities []Modality) []string {
	if len(modalities) == 0 {
		modalities = AllModalities()
	}
	names := make([]string, 0, len(modalities))
	for _, modality := range modalities {
		names = append(names, string(modality))
	}
	return names
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

func (builder *CommandBuilder) resolveCatalog() Catalog {
	if builder.ConfigurationProvider == nil {
		return DefaultCatalogConfiguration().ToCatalog()
	}
	return builder.ConfigurationProvider().ToCatalog()
}
