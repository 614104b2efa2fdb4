package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	pathListJoinSeparatorConstant           = ", "
)

const (
	dataladGetSubcommandNameConstant         = "get"
	dataladCloneSubcommandNameConstant       = "clone"
	dataladSubdatasetsSubcommandNameConstant = "subdatasets"
	dataladRecursiveFlagConstant             = "--recursive"
	dataladDatasetFlagConstant               = "--dataset"
)

const (
	dataladGetStartTemplateConstant                        = "Retrieving %s from dataset %s"
	dataladGetRecursiveStartTemplateConstant               = "Recursively retrieving %s from dataset %s"
	dataladGetSuccessTemplateConstant                      = "Retrieved %s from dataset %s"
	dataladGetFailureTemplateConstant                      = "Failed to retrieve %s from dataset %s (exit code %d%s)"
	dataladGetExecutionFailureTemplateConstant             = "Unable to retrieve %s from dataset %s: %s"
	dataladCloneStartTemplateConstant                      = "Cloning dataset %s"
	dataladCloneSuccessTemplateConstant                    = "Cloned dataset %s"
	dataladCloneFailureTemplateConstant                    = "Failed to clone dataset %s (exit code %d%s)"
	dataladCloneExecutionFailureTemplateConstant           = "Unable to clone dataset %s: %s"
	dataladSubdatasetsStartTemplateConstant                = "Listing subdatasets of %s"
	dataladSubdatasetsSuccessTemplateConstant              = "Listed subdatasets of %s"
	dataladSubdatasetsFailureTemplateConstant              = "Failed to list subdatasets of %s (exit code %d%s)"
	dataladSubdatasetsExecutionFailureTemplateConstant     = "Unable to list subdatasets of %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandDatalad:
		return formatter.describeDataladMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeDataladMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	subcommand, subcommandArguments := formatter.splitSubcommand(command.Details.Arguments)
	switch subcommand {
	case dataladGetSubcommandNameConstant:
		return formatter.describeDataladGetMessage(command, subcommandArguments, result, failure, stage)
	case dataladCloneSubcommandNameConstant:
		return formatter.describeDataladCloneMessage(command, subcommandArguments, result, failure, stage)
	case dataladSubdatasetsSubcommandNameConstant:
		return formatter.describeDataladSubdatasetsMessage(command, subcommandArguments, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeDataladGetMessage(command ShellCommand, arguments []string, result ExecutionResult, failure error, stage messageStage) string {
	datasetLabel := formatter.resolveDatasetLabel(command, arguments)
	pathsLabel := formatter.ensureValue(formatter.joinPositionalArguments(arguments))
	recursive := containsArgument(arguments, dataladRecursiveFlagConstant)

	switch stage {
	case messageStageStart:
		if recursive {
			return fmt.Sprintf(dataladGetRecursiveStartTemplateConstant, pathsLabel, datasetLabel)
		}
		return fmt.Sprintf(dataladGetStartTemplateConstant, pathsLabel, datasetLabel)
	case messageStageSuccess:
		return fmt.Sprintf(dataladGetSuccessTemplateConstant, pathsLabel, datasetLabel)
	case messageStageFailure:
		return fmt.Sprintf(dataladGetFailureTemplateConstant, pathsLabel, datasetLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(dataladGetExecutionFailureTemplateConstant, pathsLabel, datasetLabel, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeDataladCloneMessage(command ShellCommand, arguments []string, result ExecutionResult, failure error, stage messageStage) string {
	sourceLabel := formatter.ensureValue(formatter.firstPositionalArgument(arguments))

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(dataladCloneStartTemplateConstant, sourceLabel)
	case messageStageSuccess:
		return fmt.Sprintf(dataladCloneSuccessTemplateConstant, sourceLabel)
	case messageStageFailure:
		return fmt.Sprintf(dataladCloneFailureTemplateConstant, sourceLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(dataladCloneExecutionFailureTemplateConstant, sourceLabel, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeDataladSubdatasetsMessage(command ShellCommand, arguments []string, result ExecutionResult, failure error, stage messageStage) string {
	datasetLabel := formatter.resolveDatasetLabel(command, arguments)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(dataladSubdatasetsStartTemplateConstant, datasetLabel)
	case messageStageSuccess:
		return fmt.Sprintf(dataladSubdatasetsSuccessTemplateConstant, datasetLabel)
	case messageStageFailure:
		return fmt.Sprintf(dataladSubdatasetsFailureTemplateConstant, datasetLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(dataladSubdatasetsExecutionFailureTemplateConstant, datasetLabel, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	workingDirectorySuffix := formatter.formatWorkingDirectorySuffix(command)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, workingDirectorySuffix)
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

// resolveDatasetLabel prefers the --dataset flag value and falls back to the working directory.
func (formatter CommandMessageFormatter) resolveDatasetLabel(command ShellCommand, arguments []string) string {
	datasetPath := findFlagValue(arguments, dataladDatasetFlagConstant)
	if len(datasetPath) > 0 {
		return datasetPath
	}
	return formatter.describeWorkingDirectory(command)
}

func (formatter CommandMessageFormatter) splitSubcommand(arguments []string) (string, []string) {
	for index := 0; index < len(arguments); index++ {
		trimmed := strings.TrimSpace(arguments[index])
		if len(trimmed) == 0 {
			continue
		}
		if formatter.isValuedFlag(trimmed) {
			index++
			continue
		}
		if strings.HasPrefix(trimmed, "-") {
			continue
		}
		return trimmed, arguments[index+1:]
	}
	return emptyStringConstant, nil
}

func (formatter CommandMessageFormatter) firstPositionalArgument(arguments []string) string {
	for index := 0; index < len(arguments); index++ {
		trimmed := strings.TrimSpace(arguments[index])
		if len(trimmed) == 0 {
			continue
		}
		if trimmed == dataladDatasetFlagConstant {
			index++
			continue
		}
		if strings.HasPrefix(trimmed, "-") {
			continue
		}
		return trimmed
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) joinPositionalArguments(arguments []string) string {
	positional := []string{}
	for index := 0; index < len(arguments); index++ {
		trimmed := strings.TrimSpace(arguments[index])
		if len(trimmed) == 0 {
			continue
		}
		if trimmed == dataladDatasetFlagConstant || formatter.isValuedFlag(trimmed) {
			index++
			continue
		}
		if strings.HasPrefix(trimmed, "-") {
			continue
		}
		positional = append(positional, trimmed)
	}
	return strings.Join(positional, pathListJoinSeparatorConstant)
}

// isValuedFlag reports flags whose value occupies the following argument.
func (formatter CommandMessageFormatter) isValuedFlag(argument string) bool {
	switch argument {
	case "--jobs", "-J", "-f", "--source":
		return true
	default:
		return false
	}
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}

func findFlagValue(arguments []string, flag string) string {
	for index := 0; index < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == flag && index+1 < len(arguments) {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return emptyStringConstant
}
