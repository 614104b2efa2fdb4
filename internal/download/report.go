package download

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	reportFilePermissionsConstant     = 0o644
	reportEncodingErrorTemplate       = "encoding download report: %w"
	reportWriteErrorTemplateConstant  = "writing download report to %s: %w"
	reportTimestampLayoutConstant     = time.RFC3339
	subjectOutcomeRetrievedConstant   = SubjectOutcomeStatus("retrieved")
	subjectOutcomeUpToDateConstant    = SubjectOutcomeStatus("up-to-date")
	subjectOutcomeFailedConstant      = SubjectOutcomeStatus("failed")
	subjectOutcomePlannedConstant     = SubjectOutcomeStatus("planned")
	reportPathRequiredMessageConstant = "report path required"
)

// SubjectOutcomeStatus classifies the retrieval result for one subject.
type SubjectOutcomeStatus string

// Subject outcome statuses recorded in the report.
const (
	SubjectOutcomeRetrieved = subjectOutcomeRetrievedConstant
	SubjectOutcomeUpToDate  = subjectOutcomeUpToDateConstant
	SubjectOutcomeFailed    = subjectOutcomeFailedConstant
	SubjectOutcomePlanned   = subjectOutcomePlannedConstant
)

// SubjectOutcome records the retrieval result for a single subject.
type SubjectOutcome struct {
	Identifier string               `yaml:"subject"`
	Status     SubjectOutcomeStatus `yaml:"status"`
	Message    string               `yaml:"message,omitempty"`
}

// Report summarizes a download run.
type Report struct {
	DatasetPath string           `yaml:"dataset_path"`
	GeneratedAt string           `yaml:"generated_at"`
	DryRun      bool             `yaml:"dry_run,omitempty"`
	Subjects    []SubjectOutcome `yaml:"subjects"`
}

// FailedSubjectIdentifiers lists subjects whose retrieval failed.
func (report Report) FailedSubjectIdentifiers() []string {
	failedIdentifiers := []string{}
	for _, subjectOutcome := range report.Subjects {
		if subjectOutcome.Status == SubjectOutcomeFailed {
			failedIdentifiers = append(failedIdentifiers, subjectOutcome.Identifier)
		}
	}
	return failedIdentifiers
}

// Write persists the report as YAML at the provided path.
func (report Report) Write(reportPath string) error {
	if len(reportPath) == 0 {
		return errors.New(reportPathRequiredMessageConstant)
	}

	encodedReport, encodingError := yaml.Marshal(report)
	if encodingError != nil {
		return fmt.Errorf(reportEncodingErrorTemplate, encodingError)
	}

	if writeError := os.WriteFile(reportPath, encodedReport, reportFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(reportWriteErrorTemplateConstant, reportPath, writeError)
	}
	return nil
}
