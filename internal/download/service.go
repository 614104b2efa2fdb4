package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hbclab/neuroget/internal/dataladcli"
	"github.com/hbclab/neuroget/internal/subjects"
)

const (
	datasetPathRequiredMessageConstant     = "dataset path required"
	datasetMissingWithoutSourceTemplate    = "dataset %s does not exist and no clone source is configured"
	subjectRetrievalFailedMessageConstant  = "retrieval failed for one or more subjects"
	clientNotConfiguredMessageConstant     = "datalad client not configured"
	datasetClonedMessageConstant           = "dataset cloned"
	datasetPresentMessageConstant          = "dataset already present"
	subjectRetrievedMessageConstant        = "subject retrieved"
	subjectUpToDateMessageConstant         = "subject already up to date"
	subjectRetrievalFailedLogConstant      = "subject retrieval failed"
	dryRunPlannedMessageConstant           = "dry run: subject retrieval planned"
	reportWrittenMessageConstant           = "download report written"
	logFieldSubjectConstant                = "subject"
	logFieldDatasetPathConstant            = "dataset_path"
	logFieldCloneSourceConstant            = "source"
	logFieldFailureDetailConstant          = "detail"
	logFieldReportPathConstant             = "report_path"
	failedRecordDetailSeparatorConstant    = "; "
	failedRecordDetailTemplateConstant     = "%s: %s"
)

var (
	// ErrDatasetPathRequired indicates a download request without a dataset path.
	ErrDatasetPathRequired = errors.New(datasetPathRequiredMessageConstant)
	// ErrSubjectRetrievalFailed indicates that at least one subject could not be retrieved.
	ErrSubjectRetrievalFailed = errors.New(subjectRetrievalFailedMessageConstant)
	// ErrClientNotConfigured indicates the service was constructed without a DataLad client.
	ErrClientNotConfigured = errors.New(clientNotConfiguredMessageConstant)
)

// DatasetClient is the subset of dataladcli.Client used by the service.
type DatasetClient interface {
	Get(executionContext context.Context, options dataladcli.GetOptions) ([]dataladcli.ResultRecord, error)
	Clone(executionContext context.Context, options dataladcli.CloneOptions) error
}

// Request describes one download run.
type Request struct {
	DatasetPath        string
	SourceURL          string
	Jobs               int
	Recursive          bool
	RequiredModalities []subjects.Modality
	SubjectIdentifiers []string
	DryRun             bool
	ReportPath         string
}

// Service coordinates subject selection and DataLad retrieval.
type Service struct {
	Logger  *zap.Logger
	Client  DatasetClient
	Catalog subjects.Catalog
	Clock   func() time.Time
}

// NewService constructs a download service.
func NewService(logger *zap.Logger, client DatasetClient, catalog subjects.Catalog) (*Service, error) {
	if client == nil {
		return nil, ErrClientNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{Logger: logger, Client: client, Catalog: catalog, Clock: time.Now}, nil
}

// Download retrieves the requested subjects and reports per-subject outcomes.
//
// A failed subject does not abort the run; remaining subjects are still
// retrieved and the accumulated failures surface as ErrSubjectRetrievalFailed
// alongside the report.
func (service *Service) Download(executionContext context.Context, request Request) (Report, error) {
	datasetPath := strings.TrimSpace(request.DatasetPath)
	if len(datasetPath) == 0 {
		return Report{}, ErrDatasetPathRequired
	}

	subjectIdentifiers, selectionError := service.resolveSubjectIdentifiers(request)
	if selectionError != nil {
		return Report{}, selectionError
	}

	if !request.DryRun {
		if ensureError := service.ensureDataset(executionContext, datasetPath, request.SourceURL); ensureError != nil {
			return Report{}, ensureError
		}
	}

	report := Report{
		DatasetPath: datasetPath,
		GeneratedAt: service.now().Format(reportTimestampLayoutConstant),
		DryRun:      request.DryRun,
	}

	for _, subjectIdentifier := range subjectIdentifiers {
		report.Subjects = append(report.Subjects, service.retrieveSubject(executionContext, request, datasetPath, subjectIdentifier))
	}

	if reportError := service.writeReport(report, request.ReportPath); reportError != nil {
		return report, reportError
	}

	if len(report.FailedSubjectIdentifiers()) > 0 {
		return report, ErrSubjectRetrievalFailed
	}
	return report, nil
}

func (service *Service) resolveSubjectIdentifiers(request Request) ([]string, error) {
	if len(request.SubjectIdentifiers) > 0 {
		resolvedIdentifiers := make([]string, 0, len(request.SubjectIdentifiers))
		for _, rawIdentifier := range request.SubjectIdentifiers {
			subjectNumber, resolveError := service.Catalog.ResolveIdentifier(rawIdentifier)
			if resolveError != nil {
				return nil, resolveError
			}
			resolvedIdentifiers = append(resolvedIdentifiers, subjects.FormatSubjectIdentifier(subjectNumber))
		}
		return resolvedIdentifiers, nil
	}

	eligibleIdentifiers, eligibilityError := service.Catalog.EligibleSubjectIdentifiers(request.RequiredModalities)
	if eligibilityError != nil {
		return nil, eligibilityError
	}
	if len(eligibleIdentifiers) == 0 {
		return nil, subjects.ErrNoEligibleSubjects
	}
	return eligibleIdentifiers, nil
}

func (service *Service) ensureDataset(executionContext context.Context, datasetPath string, sourceURL string) error {
	if _, statError := os.Stat(datasetPath); statError == nil {
		service.Logger.Debug(datasetPresentMessageConstant, zap.String(logFieldDatasetPathConstant, datasetPath))
		return nil
	}

	trimmedSource := strings.TrimSpace(sourceURL)
	if len(trimmedSource) == 0 {
		return fmt.Errorf(datasetMissingWithoutSourceTemplate, datasetPath)
	}

	cloneError := service.Client.Clone(executionContext, dataladcli.CloneOptions{Source: trimmedSource, TargetPath: datasetPath})
	if cloneError != nil {
		return cloneError
	}

	service.Logger.Info(
		datasetClonedMessageConstant,
		zap.String(logFieldDatasetPathConstant, datasetPath),
		zap.String(logFieldCloneSourceConstant, trimmedSource),
	)
	return nil
}

func (service *Service) retrieveSubject(executionContext context.Context, request Request, datasetPath string, subjectIdentifier string) SubjectOutcome {
	if request.DryRun {
		service.Logger.Info(dryRunPlannedMessageConstant, zap.String(logFieldSubjectConstant, subjectIdentifier))
		return SubjectOutcome{Identifier: subjectIdentifier, Status: SubjectOutcomePlanned}
	}

	resultRecords, retrievalError := service.Client.Get(executionContext, dataladcli.GetOptions{
		DatasetPath: datasetPath,
		Paths:       []string{subjectIdentifier},
		Recursive:   request.Recursive,
		Jobs:        request.Jobs,
	})

	failureDetail := summarizeFailures(resultRecords, retrievalError)
	if len(failureDetail) > 0 {
		service.Logger.Warn(
			subjectRetrievalFailedLogConstant,
			zap.String(logFieldSubjectConstant, subjectIdentifier),
			zap.String(logFieldFailureDetailConstant, failureDetail),
		)
		return SubjectOutcome{Identifier: subjectIdentifier, Status: SubjectOutcomeFailed, Message: failureDetail}
	}

	if allRecordsNotNeeded(resultRecords) {
		service.Logger.Info(subjectUpToDateMessageConstant, zap.String(logFieldSubjectConstant, subjectIdentifier))
		return SubjectOutcome{Identifier: subjectIdentifier, Status: SubjectOutcomeUpToDate}
	}

	service.Logger.Info(subjectRetrievedMessageConstant, zap.String(logFieldSubjectConstant, subjectIdentifier))
	return SubjectOutcome{Identifier: subjectIdentifier, Status: SubjectOutcomeRetrieved}
}

func (service *Service) writeReport(report Report, reportPath string) error {
	trimmedReportPath := strings.TrimSpace(reportPath)
	if len(trimmedReportPath) == 0 {
		return nil
	}
	if writeError := report.Write(trimmedReportPath); writeError != nil {
		return writeError
	}
	service.Logger.Info(reportWrittenMessageConstant, zap.String(logFieldReportPathConstant, trimmedReportPath))
	return nil
}

func (service *Service) now() time.Time {
	if service.Clock == nil {
		return time.Now()
	}
	return service.Clock()
}

func summarizeFailures(resultRecords []dataladcli.ResultRecord, retrievalError error) string {
	failureDetails := []string{}
	for _, resultRecord := range resultRecords {
		if resultRecord.Succeeded() {
			continue
		}
		failureDetails = append(failureDetails, fmt.Sprintf(failedRecordDetailTemplateConstant, resultRecord.Path, resultRecord.Message))
	}

	if len(failureDetails) == 0 {
		if retrievalError != nil {
			return retrievalError.Error()
		}
		return ""
	}
	return strings.Join(failureDetails, failedRecordDetailSeparatorConstant)
}

func allRecordsNotNeeded(resultRecords []dataladcli.ResultRecord) bool {
	if len(resultRecords) == 0 {
		return false
	}
	for _, resultRecord := range resultRecords {
		if resultRecord.Status != dataladcli.ResultStatusNotNeeded {
			return false
		}
	}
	return true
}
