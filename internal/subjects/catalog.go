package subjects

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	modalityEEGStringConstant                = "eeg"
	modalityECGStringConstant                = "ecg"
	modalityPPGStringConstant                = "ppg"
	modalityPupillometryStringConstant       = "pupillometry"
	subjectIdentifierPrefixConstant          = "sub-"
	subjectIdentifierTemplateConstant        = "sub-%03d"
	unknownModalityErrorTemplateConstant     = "unknown modality: %s"
	malformedIdentifierErrorTemplateConstant = "malformed subject identifier: %s"
	identifierOutOfRosterTemplateConstant    = "subject %s is outside the roster %d..%d"
	invalidRosterBoundsMessageConstant       = "roster start must not exceed roster end"
	emptyRosterMessageConstant               = "catalog produced no eligible subjects"
)

// Modality identifies a recorded data modality within the dataset.
type Modality string

// Modalities recorded for the study.
const (
	ModalityEEG          Modality = Modality(modalityEEGStringConstant)
	ModalityECG          Modality = Modality(modalityECGStringConstant)
	ModalityPPG          Modality = Modality(modalityPPGStringConstant)
	ModalityPupillometry Modality = Modality(modalityPupillometryStringConstant)
)

// ErrInvalidRosterBounds indicates a catalog whose roster range is inverted.
var ErrInvalidRosterBounds = errors.New(invalidRosterBoundsMessageConstant)

// ErrNoEligibleSubjects indicates that every roster member was excluded.
var ErrNoEligibleSubjects = errors.New(emptyRosterMessageConstant)

// AllModalities lists every modality recorded for the study.
func AllModalities() []Modality {
	return []Modality{ModalityEEG, ModalityECG, ModalityPPG, ModalityPupillometry}
}

// ParseModality converts a user-supplied modality name into a Modality value.
func ParseModality(rawModality string) (Modality, error) {
	normalizedModality := strings.ToLower(strings.TrimSpace(rawModality))
	for _, knownModality := range AllModalities() {
		if normalizedModality == string(knownModality) {
			return knownModality, nil
		}
	}
	return Modality(""), fmt.Errorf(unknownModalityErrorTemplateConstant, rawModality)
}

// Catalog describes the subject roster and which subjects lack each modality.
type Catalog struct {
	RosterStart     int
	RosterEnd       int
	MissingSubjects map[Modality][]int
}

// FormatSubjectIdentifier renders a subject number as a zero-padded identifier.
func FormatSubjectIdentifier(subjectNumber int) string {
	return fmt.Sprintf(subjectIdentifierTemplateConstant, subjectNumber)
}

// ParseSubjectIdentifier extracts the subject number from an identifier such as sub-032.
func ParseSubjectIdentifier(identifier string) (int, error) {
	trimmedIdentifier := strings.TrimSpace(identifier)
	if !strings.HasPrefix(trimmedIdentifier, subjectIdentifierPrefixConstant) {
		return 0, fmt.Errorf(malformedIdentifierErrorTemplateConstant, identifier)
	}

	numericPortion := strings.TrimPrefix(trimmedIdentifier, subjectIdentifierPrefixConstant)
	subjectNumber, parseError := strconv.Atoi(numericPortion)
	if parseError != nil || subjectNumber < 0 {
		return 0, fmt.Errorf(malformedIdentifierErrorTemplateConstant, identifier)
	}

	return subjectNumber, nil
}

// Validate checks the catalog invariants.
func (catalog Catalog) Validate() error {
	if catalog.RosterStart > catalog.RosterEnd {
		return ErrInvalidRosterBounds
	}
	return nil
}

// ContainsSubject reports whether a subject number falls within the roster.
func (catalog Catalog) ContainsSubject(subjectNumber int) bool {
	return subjectNumber >= catalog.RosterStart && subjectNumber <= catalog.RosterEnd
}

// ResolveIdentifier parses an identifier and confirms roster membership.
func (catalog Catalog) ResolveIdentifier(identifier string) (int, error) {
	subjectNumber, parseError := ParseSubjectIdentifier(identifier)
	if parseError != nil {
		return 0, parseError
	}
	if !catalog.ContainsSubject(subjectNumber) {
		return 0, fmt.Errorf(identifierOutOfRosterTemplateConstant, FormatSubjectIdentifier(subjectNumber), catalog.RosterStart, catalog.RosterEnd)
	}
	return subjectNumber, nil
}

// EligibleSubjectNumbers derives the sorted roster subset that carries every required modality.
//
// An empty requirement list means all modalities, reproducing the original
// "complete subjects" selection. Exclusion entries outside the roster are
// ignored.
func (catalog Catalog) EligibleSubjectNumbers(requiredModalities []Modality) ([]int, error) {
	if validationError := catalog.Validate(); validationError != nil {
		return nil, validationError
	}

	modalitiesToCheck := requiredModalities
	if len(modalitiesToCheck) == 0 {
		modalitiesToCheck = AllModalities()
	}

	excludedSubjects := map[int]struct{}{}
	for _, requiredModality := range modalitiesToCheck {
		if _, parseError := ParseModality(string(requiredModality)); parseError != nil {
			return nil, parseError
		}
		for _, missingSubject := range catalog.MissingSubjects[requiredModality] {
			excludedSubjects[missingSubject] = struct{}{}
		}
	}

	eligibleNumbers := []int{}
	for subjectNumber := catalog.RosterStart; subjectNumber <= catalog.RosterEnd; subjectNumber++ {
		if _, isExcluded := excludedSubjects[subjectNumber]; isExcluded {
			continue
		}
		eligibleNumbers = append(eligibleNumbers, subjectNumber)
	}

	sort.Ints(eligibleNumbers)
	return eligibleNumbers, nil
}

// EligibleSubjectIdentifiers derives formatted identifiers for every eligible subject.
func (catalog Catalog) EligibleSubjectIdentifiers(requiredModalities []Modality) ([]string, error) {
	eligibleNumbers, eligibilityError := catalog.EligibleSubjectNumbers(requiredModalities)
	if eligibilityError != nil {
		return nil, eligibilityError
	}

	eligibleIdentifiers := make([]string, 0, len(eligibleNumbers))
	for _, subjectNumber := range eligibleNumbers {
		eligibleIdentifiers = append(eligibleIdentifiers, FormatSubjectIdentifier(subjectNumber))
	}
	return eligibleIdentifiers, nil
}
