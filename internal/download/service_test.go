package download_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gopkg.in/yaml.v3"

	"github.com/hbclab/neuroget/internal/dataladcli"
	"github.com/hbclab/neuroget/internal/download"
	"github.com/hbclab/neuroget/internal/subjects"
)

type fakeDatasetClient struct {
	recordsByPath map[string][]dataladcli.ResultRecord
	errorsByPath  map[string]error
	getPaths      []string
	getOptions    []dataladcli.GetOptions
	cloneOptions  []dataladcli.CloneOptions
	cloneError    error
}

func (client *fakeDatasetClient) Get(_ context.Context, options dataladcli.GetOptions) ([]dataladcli.ResultRecord, error) {
	client.getOptions = append(client.getOptions, options)
	requestedPath := options.Paths[0]
	client.getPaths = append(client.getPaths, requestedPath)
	return client.recordsByPath[requestedPath], client.errorsByPath[requestedPath]
}

func (client *fakeDatasetClient) Clone(_ context.Context, options dataladcli.CloneOptions) error {
	client.cloneOptions = append(client.cloneOptions, options)
	return client.cloneError
}

func okRecord(path string) dataladcli.ResultRecord {
	return dataladcli.ResultRecord{Status: dataladcli.ResultStatusOK, Action: "get", Path: path}
}

func notNeededRecord(path string) dataladcli.ResultRecord {
	return dataladcli.ResultRecord{Status: dataladcli.ResultStatusNotNeeded, Action: "get", Path: path}
}

func smallCatalog() subjects.Catalog {
	return subjects.Catalog{
		RosterStart: 32,
		RosterEnd:   34,
		MissingSubjects: map[subjects.Modality][]int{
			subjects.ModalityEEG: {33},
		},
	}
}

func newTestService(testInstance *testing.T, client download.DatasetClient, catalog subjects.Catalog) *download.Service {
	service, creationError := download.NewService(zaptest.NewLogger(testInstance), client, catalog)
	require.NoError(testInstance, creationError)
	service.Clock = func() time.Time { return time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC) }
	return service
}

func TestNewServiceRequiresClient(testInstance *testing.T) {
	_, creationError := download.NewService(nil, nil, subjects.Catalog{})
	require.ErrorIs(testInstance, creationError, download.ErrClientNotConfigured)
}

func TestDownloadRequiresDatasetPath(testInstance *testing.T) {
	service := newTestService(testInstance, &fakeDatasetClient{}, smallCatalog())

	_, downloadError := service.Download(context.Background(), download.Request{})
	require.ErrorIs(testInstance, downloadError, download.ErrDatasetPathRequired)
}

func TestDownloadRetrievesEligibleSubjects(testInstance *testing.T) {
	datasetPath := testInstance.TempDir()
	client := &fakeDatasetClient{
		recordsByPath: map[string][]dataladcli.ResultRecord{
			"sub-032": {okRecord("sub-032")},
			"sub-034": {notNeededRecord("sub-034")},
		},
		errorsByPath: map[string]error{},
	}
	service := newTestService(testInstance, client, smallCatalog())

	report, downloadError := service.Download(context.Background(), download.Request{
		DatasetPath: datasetPath,
		Jobs:        4,
		Recursive:   true,
	})
	require.NoError(testInstance, downloadError)

	require.Equal(testInstance, []string{"sub-032", "sub-034"}, client.getPaths)
	require.True(testInstance, client.getOptions[0].Recursive)
	require.Equal(testInstance, 4, client.getOptions[0].Jobs)
	require.Equal(testInstance, datasetPath, client.getOptions[0].DatasetPath)

	require.Len(testInstance, report.Subjects, 2)
	require.Equal(testInstance, download.SubjectOutcomeRetrieved, report.Subjects[0].Status)
	require.Equal(testInstance, download.SubjectOutcomeUpToDate, report.Subjects[1].Status)
	require.Empty(testInstance, report.FailedSubjectIdentifiers())
}

func TestDownloadContinuesPastFailedSubjects(testInstance *testing.T) {
	datasetPath := testInstance.TempDir()
	failedRecord := dataladcli.ResultRecord{
		Status:  dataladcli.ResultStatusError,
		Action:  "get",
		Path:    "sub-032",
		Message: "no known source",
	}
	client := &fakeDatasetClient{
		recordsByPath: map[string][]dataladcli.ResultRecord{
			"sub-032": {failedRecord},
			"sub-034": {okRecord("sub-034")},
		},
		errorsByPath: map[string]error{
			"sub-032": dataladcli.OperationError{Operation: "RetrieveContent"},
		},
	}
	service := newTestService(testInstance, client, smallCatalog())

	report, downloadError := service.Download(context.Background(), download.Request{DatasetPath: datasetPath})
	require.ErrorIs(testInstance, downloadError, download.ErrSubjectRetrievalFailed)

	require.Equal(testInstance, []string{"sub-032", "sub-034"}, client.getPaths)
	require.Equal(testInstance, download.SubjectOutcomeFailed, report.Subjects[0].Status)
	require.Contains(testInstance, report.Subjects[0].Message, "no known source")
	require.Equal(testInstance, download.SubjectOutcomeRetrieved, report.Subjects[1].Status)
	require.Equal(testInstance, []string{"sub-032"}, report.FailedSubjectIdentifiers())
}

func TestDownloadResolvesExplicitIdentifiers(testInstance *testing.T) {
	datasetPath := testInstance.TempDir()
	client := &fakeDatasetClient{
		recordsByPath: map[string][]dataladcli.ResultRecord{
			"sub-033": {okRecord("sub-033")},
		},
	}
	service := newTestService(testInstance, client, smallCatalog())

	report, downloadError := service.Download(context.Background(), download.Request{
		DatasetPath:        datasetPath,
		SubjectIdentifiers: []string{"sub-033"},
	})
	require.NoError(testInstance, downloadError)
	require.Equal(testInstance, []string{"sub-033"}, client.getPaths)
	require.Len(testInstance, report.Subjects, 1)
}

func TestDownloadRejectsIdentifierOutsideRoster(testInstance *testing.T) {
	service := newTestService(testInstance, &fakeDatasetClient{}, smallCatalog())

	_, downloadError := service.Download(context.Background(), download.Request{
		DatasetPath:        testInstance.TempDir(),
		SubjectIdentifiers: []string{"sub-120"},
	})
	require.Error(testInstance, downloadError)
}

func TestDownloadClonesMissingDataset(testInstance *testing.T) {
	missingDatasetPath := filepath.Join(testInstance.TempDir(), "study")
	client := &fakeDatasetClient{
		recordsByPath: map[string][]dataladcli.ResultRecord{
			"sub-032": {okRecord("sub-032")},
			"sub-034": {okRecord("sub-034")},
		},
	}
	service := newTestService(testInstance, client, smallCatalog())

	_, downloadError := service.Download(context.Background(), download.Request{
		DatasetPath: missingDatasetPath,
		SourceURL:   "https://example.org/study.git",
	})
	require.NoError(testInstance, downloadError)

	require.Len(testInstance, client.cloneOptions, 1)
	require.Equal(testInstance, "https://example.org/study.git", client.cloneOptions[0].Source)
	require.Equal(testInstance, missingDatasetPath, client.cloneOptions[0].TargetPath)
}

func TestDownloadFailsWhenDatasetMissingWithoutSource(testInstance *testing.T) {
	missingDatasetPath := filepath.Join(testInstance.TempDir(), "study")
	service := newTestService(testInstance, &fakeDatasetClient{}, smallCatalog())

	_, downloadError := service.Download(context.Background(), download.Request{DatasetPath: missingDatasetPath})
	require.Error(testInstance, downloadError)
	require.NotErrorIs(testInstance, downloadError, download.ErrSubjectRetrievalFailed)
}

func TestDownloadDryRunSkipsClient(testInstance *testing.T) {
	missingDatasetPath := filepath.Join(testInstance.TempDir(), "study")
	client := &fakeDatasetClient{}
	service := newTestService(testInstance, client, smallCatalog())

	report, downloadError := service.Download(context.Background(), download.Request{
		DatasetPath: missingDatasetPath,
		DryRun:      true,
	})
	require.NoError(testInstance, downloadError)

	require.Empty(testInstance, client.getPaths)
	require.Empty(testInstance, client.cloneOptions)
	require.True(testInstance, report.DryRun)
	for _, subjectOutcome := range report.Subjects {
		require.Equal(testInstance, download.SubjectOutcomePlanned, subjectOutcome.Status)
	}
}

func TestDownloadWritesReportFile(testInstance *testing.T) {
	datasetPath := testInstance.TempDir()
	reportPath := filepath.Join(testInstance.TempDir(), "report.yaml")
	client := &fakeDatasetClient{
		recordsByPath: map[string][]dataladcli.ResultRecord{
			"sub-032": {okRecord("sub-032")},
			"sub-034": {okRecord("sub-034")},
		},
	}
	service := newTestService(testInstance, client, smallCatalog())

	_, downloadError := service.Download(context.Background(), download.Request{
		DatasetPath: datasetPath,
		ReportPath:  reportPath,
	})
	require.NoError(testInstance, downloadError)

	reportContents, readError := os.ReadFile(reportPath)
	require.NoError(testInstance, readError)

	var decodedReport download.Report
	require.NoError(testInstance, yaml.Unmarshal(reportContents, &decodedReport))
	require.Equal(testInstance, datasetPath, decodedReport.DatasetPath)
	require.Equal(testInstance, "2026-03-01T12:00:00Z", decodedReport.GeneratedAt)
	require.Len(testInstance, decodedReport.Subjects, 2)
}

func TestDownloadReportsEmptyEligibleRoster(testInstance *testing.T) {
	emptyCatalog := subjects.Catalog{
		RosterStart: 32,
		RosterEnd:   32,
		MissingSubjects: map[subjects.Modality][]int{
			subjects.ModalityEEG: {32},
		},
	}
	service := newTestService(testInstance, &fakeDatasetClient{}, emptyCatalog)

	_, downloadError := service.Download(context.Background(), download.Request{DatasetPath: testInstance.TempDir()})
	require.ErrorIs(testInstance, downloadError, subjects.ErrNoEligibleSubjects)
}

func TestDownloadSummarizesErrorWithoutRecords(testInstance *testing.T) {
	datasetPath := testInstance.TempDir()
	client := &fakeDatasetClient{
		recordsByPath: map[string][]dataladcli.ResultRecord{
			"sub-034": {okRecord("sub-034")},
		},
		errorsByPath: map[string]error{
			"sub-032": errors.New("datalad not installed"),
		},
	}
	service := newTestService(testInstance, client, smallCatalog())

	report, downloadError := service.Download(context.Background(), download.Request{DatasetPath: datasetPath})
	require.ErrorIs(testInstance, downloadError, download.ErrSubjectRetrievalFailed)
	require.Equal(testInstance, "datalad not installed", report.Subjects[0].Message)
}
