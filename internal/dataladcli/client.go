package dataladcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hbclab/neuroget/internal/execshell"
)

const (
	getSubcommandConstant                   = "get"
	cloneSubcommandConstant                 = "clone"
	outputFormatFlagConstant                = "-f"
	outputFormatJSONConstant                = "json"
	recursiveFlagConstant                   = "--recursive"
	jobsFlagConstant                        = "--jobs"
	datasetFlagConstant                     = "--dataset"
	datasetPathFieldNameConstant            = "dataset_path"
	retrievalPathsFieldNameConstant         = "paths"
	cloneSourceFieldNameConstant            = "source"
	requiredValueMessageConstant            = "value required"
	executorNotConfiguredMessageConstant    = "datalad executor not configured"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant   = "%s response decoding failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	retrieveOperationNameConstant           = OperationName("RetrieveContent")
	cloneOperationNameConstant              = OperationName("CloneDataset")
)

// OperationName describes a named DataLad workflow supported by the client.
type OperationName string

// ResultStatus enumerates DataLad result record statuses.
type ResultStatus string

// Result status enumerations emitted by DataLad.
const (
	ResultStatusOK         ResultStatus = ResultStatus("ok")
	ResultStatusNotNeeded  ResultStatus = ResultStatus("notneeded")
	ResultStatusImpossible ResultStatus = ResultStatus("impossible")
	ResultStatusError      ResultStatus = ResultStatus("error")
)

// ResultRecord captures a single DataLad JSON result record.
type ResultRecord struct {
	Status  ResultStatus
	Action  string
	Path    string
	Type    string
	Message string
}

// Succeeded reports whether the record describes retrieved or already-present content.
func (record ResultRecord) Succeeded() bool {
	return record.Status == ResultStatusOK || record.Status == ResultStatusNotNeeded
}

// GetOptions configures content retrieval through datalad get.
type GetOptions struct {
	DatasetPath string
	Paths       []string
	Recursive   bool
	Jobs        int
}

// CloneOptions configures dataset cloning through datalad clone.
type CloneOptions struct {
	Source     string
	TargetPath string
}

// DataladCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type DataladCommandExecutor interface {
	ExecuteDatalad(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates DataLad invocations through execshell.
type Client struct {
	executor DataladCommandExecutor
}

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for DataLad operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates result record decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying cause.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// NewClient constructs a DataLad CLI client.
func NewClient(executor DataladCommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

// Get retrieves dataset content using datalad get and returns decoded result records.
//
// DataLad exits non-zero when any requested path could not be retrieved; in
// that case Get still decodes the records it received so callers can report
// per-path outcomes, and returns them alongside the operation error.
func (client *Client) Get(executionContext context.Context, options GetOptions) ([]ResultRecord, error) {
	datasetPath := strings.TrimSpace(options.DatasetPath)
	if len(datasetPath) == 0 {
		return nil, InvalidInputError{FieldName: datasetPathFieldNameConstant, Message: requiredValueMessageConstant}
	}

	retrievalPaths := sanitizePaths(options.Paths)
	if len(retrievalPaths) == 0 {
		return nil, InvalidInputError{FieldName: retrievalPathsFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandArguments := []string{
		outputFormatFlagConstant,
		outputFormatJSONConstant,
		getSubcommandConstant,
		datasetFlagConstant,
		datasetPath,
	}
	if options.Recursive {
		commandArguments = append(commandArguments, recursiveFlagConstant)
	}
	if options.Jobs > 0 {
		commandArguments = append(commandArguments, jobsFlagConstant, strconv.Itoa(options.Jobs))
	}
	commandArguments = append(commandArguments, retrievalPaths...)

	commandDetails := execshell.CommandDetails{Arguments: commandArguments}

	executionResult, executionError := client.executor.ExecuteDatalad(executionContext, commandDetails)
	resultRecords := decodeResultRecords(executionResult.StandardOutput)

	if executionError != nil {
		return resultRecords, OperationError{Operation: retrieveOperationNameConstant, Cause: executionError}
	}

	return resultRecords, nil
}

// Clone installs a dataset from the provided source using datalad clone.
func (client *Client) Clone(executionContext context.Context, options CloneOptions) error {
	cloneSource := strings.TrimSpace(options.Source)
	if len(cloneSource) == 0 {
		return InvalidInputError{FieldName: cloneSourceFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandArguments := []string{
		outputFormatFlagConstant,
		outputFormatJSONConstant,
		cloneSubcommandConstant,
		cloneSource,
	}
	targetPath := strings.TrimSpace(options.TargetPath)
	if len(targetPath) > 0 {
		commandArguments = append(commandArguments, targetPath)
	}

	commandDetails := execshell.CommandDetails{Arguments: commandArguments}

	_, executionError := client.executor.ExecuteDatalad(executionContext, commandDetails)
	if executionError != nil {
		return OperationError{Operation: cloneOperationNameConstant, Cause: executionError}
	}

	return nil
}

// decodeResultRecords parses DataLad JSON result records emitted one per line.
//
// DataLad interleaves progress output with result records, so lines that do
// not decode as records are skipped instead of failing the whole operation.
func decodeResultRecords(standardOutput string) []ResultRecord {
	outputLines := strings.Split(standardOutput, "\n")
	resultRecords := make([]ResultRecord, 0, len(outputLines))

	for _, outputLine := range outputLines {
		trimmedLine := strings.TrimSpace(outputLine)
		if len(trimmedLine) == 0 || !strings.HasPrefix(trimmedLine, "{") {
			continue
		}

		var decodedRecord struct {
			Status  string `json:"status"`
			Action  string `json:"action"`
			Path    string `json:"path"`
			Type    string `json:"type"`
			Message string `json:"message"`
		}
		if decodingError := json.Unmarshal([]byte(trimmedLine), &decodedRecord); decodingError != nil {
			continue
		}

		resultRecords = append(resultRecords, ResultRecord{
			Status:  ResultStatus(decodedRecord.Status),
			Action:  decodedRecord.Action,
			Path:    decodedRecord.Path,
			Type:    decodedRecord.Type,
			Message: decodedRecord.Message,
		})
	}

	return resultRecords
}

func sanitizePaths(rawPaths []string) []string {
	sanitizedPaths := make([]string, 0, len(rawPaths))
	for _, rawPath := range rawPaths {
		trimmedPath := strings.TrimSpace(rawPath)
		if len(trimmedPath) == 0 {
			continue
		}
		sanitizedPaths = append(sanitizedPaths, trimmedPath)
	}
	return sanitizedPaths
}
