package download

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hbclab/neuroget/internal/dataladcli"
	"github.com/hbclab/neuroget/internal/execshell"
	"github.com/hbclab/neuroget/internal/subjects"
	"github.com/hbclab/neuroget/internal/ui"
)

const (
	commandUseConstant                    = "get [subject...]"
	commandShortDescriptionConstant       = "Download subject data from the study dataset"
	commandLongDescriptionConstant        = "get retrieves subject directories from the DataLad dataset. Without positional arguments every eligible subject is retrieved; explicit identifiers such as sub-032 restrict the run."
	commandExecutionErrorTemplateConstant = "download failed: %w"
	flagDatasetNameConstant               = "dataset"
	flagDatasetDescriptionConstant        = "Path of the DataLad dataset"
	flagSourceNameConstant                = "source"
	flagSourceDescriptionConstant         = "Clone source used when the dataset is not yet present"
	flagJobsNameConstant                  = "jobs"
	flagJobsDescriptionConstant           = "Parallel retrieval jobs passed to datalad get"
	flagDryRunNameConstant                = "dry-run"
	flagDryRunDescriptionConstant         = "Plan the retrieval without invoking DataLad"
	flagRequireNameConstant               = "require"
	flagRequireDescriptionConstant        = "Modalities a subject must carry when no identifiers are given"
	flagReportNameConstant                = "report"
	flagReportDescriptionConstant         = "Write a YAML outcome report to this path"
	summaryLineTemplateConstant           = "%s\t%s\n"
	failedSummaryTemplateConstant         = "%s\t%s\t%s\n"
)

// CommandConfiguration aggregates the configuration consumed by the get command.
type CommandConfiguration struct {
	Download ServiceConfiguration
	Catalog  subjects.CatalogConfiguration
}

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the command configuration.
type ConfigurationProvider func() CommandConfiguration

// ClientFactory creates the DataLad client used for retrieval.
type ClientFactory func(logger *zap.Logger) (DatasetClient, error)

// CommandBuilder assembles the Cobra command for bulk downloads.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	ClientFactory         ClientFactory
}

// Build constructs the get command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagDatasetNameConstant, "", flagDatasetDescriptionConstant)
	command.Flags().String(flagSourceNameConstant, "", flagSourceDescriptionConstant)
	command.Flags().Int(flagJobsNameConstant, 0, flagJobsDescriptionConstant)
	command.Flags().Bool(flagDryRunNameConstant, false, flagDryRunDescriptionConstant)
	command.Flags().StringSlice(flagRequireNameConstant, nil, flagRequireDescriptionConstant)
	command.Flags().String(flagReportNameConstant, "", flagReportDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	logger := builder.resolveLogger()
	configuration := builder.resolveConfiguration()

	request, requestError := buildRequest(command, configuration, arguments)
	if requestError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, requestError)
	}

	client, clientError := builder.resolveClient(logger)
	if clientError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, clientError)
	}

	service, serviceError := NewService(logger, client, configuration.Catalog.ToCatalog())
	if serviceError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, serviceError)
	}

	report, downloadError := service.Download(command.Context(), request)
	printSummary(command, report)
	if downloadError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, downloadError)
	}
	return nil
}

func buildRequest(command *cobra.Command, configuration CommandConfiguration, arguments []string) (Request, error) {
	request := Request{
		DatasetPath:        configuration.Download.DatasetPath,
		SourceURL:          configuration.Download.SourceURL,
		Jobs:               configuration.Download.Jobs,
		Recursive:          configuration.Download.Recursive,
		ReportPath:         configuration.Download.ReportPath,
		SubjectIdentifiers: arguments,
	}

	if command.Flags().Changed(flagDatasetNameConstant) {
		request.DatasetPath, _ = command.Flags().GetString(flagDatasetNameConstant)
	}
	if command.Flags().Changed(flagSourceNameConstant) {
		request.SourceURL, _ = command.Flags().GetString(flagSourceNameConstant)
	}
	if command.Flags().Changed(flagJobsNameConstant) {
		request.Jobs, _ = command.Flags().GetInt(flagJobsNameConstant)
	}
	if command.Flags().Changed(flagReportNameConstant) {
		request.ReportPath, _ = command.Flags().GetString(flagReportNameConstant)
	}
	request.DryRun, _ = command.Flags().GetBool(flagDryRunNameConstant)

	rawModalities, _ := command.Flags().GetStringSlice(flagRequireNameConstant)
	for _, rawModality := range rawModalities {
		parsedModality, parseError := subjects.ParseModality(rawModality)
		if parseError != nil {
			return Request{}, parseError
		}
		request.RequiredModalities = append(request.RequiredModalities, parsedModality)
	}

	return request, nil
}

func printSummary(command *cobra.Command, report Report) {
	for _, subjectOutcome := range report.Subjects {
		if subjectOutcome.Status == SubjectOutcomeFailed {
			fmt.Fprintf(command.OutOrStdout(), failedSummaryTemplateConstant, subjectOutcome.Identifier, subjectOutcome.Status, subjectOutcome.Message)
			continue
		}
		fmt.Fprintf(command.OutOrStdout(), summaryLineTemplateConstant, subjectOutcome.Identifier, subjectOutcome.Status)
	}
}

func (builder *CommandBuilder) resolveClient(logger *zap.Logger) (DatasetClient, error) {
	if builder.ClientFactory != nil {
		return builder.ClientFactory(logger)
	}

	executor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), ui.NewConsoleCommandEventLogger(logger))
	if executorError != nil {
		return nil, executorError
	}
	return dataladcli.NewClient(executor)
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

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return CommandConfiguration{
			Download: DefaultServiceConfiguration(),
			Catalog:  subjects.DefaultCatalogConfiguration(),
		}
	}
	return builder.ConfigurationProvider()
}
