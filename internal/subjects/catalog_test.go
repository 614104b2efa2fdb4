package subjects_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hbclab/neuroget/internal/subjects"
)

const (
	firstCompleteSubjectConstant = "sub-032"
	lastCompleteSubjectConstant  = "sub-098"
)

func TestEligibleSubjectIdentifiersAllModalities(testInstance *testing.T) {
	catalog := subjects.DefaultCatalogConfiguration().ToCatalog()

	eligibleIdentifiers, eligibilityError := catalog.EligibleSubjectIdentifiers(nil)
	require.NoError(testInstance, eligibilityError)

	require.Len(testInstance, eligibleIdentifiers, 64)
	require.Equal(testInstance, firstCompleteSubjectConstant, eligibleIdentifiers[0])
	require.Equal(testInstance, lastCompleteSubjectConstant, eligibleIdentifiers[len(eligibleIdentifiers)-1])
	require.NotContains(testInstance, eligibleIdentifiers, "sub-037")
	require.NotContains(testInstance, eligibleIdentifiers, "sub-066")
	require.NotContains(testInstance, eligibleIdentifiers, "sub-094")
	require.NotContains(testInstance, eligibleIdentifiers, "sub-017")
	require.Contains(testInstance, eligibleIdentifiers, "sub-038")
}

func TestEligibleSubjectNumbersPerModality(testInstance *testing.T) {
	catalog := subjects.DefaultCatalogConfiguration().ToCatalog()

	testCases := []struct {
		name               string
		requiredModalities []subjects.Modality
		expectedCount      int
		excludedNumbers    []int
		includedNumbers    []int
	}{
		{
			name:               "pupillometry_only",
			requiredModalities: []subjects.Modality{subjects.ModalityPupillometry},
			expectedCount:      84,
			excludedNumbers:    []int{17, 94},
			includedNumbers:    []int{13, 37, 66},
		},
		{
			name:               "ecg_only",
			requiredModalities: []subjects.Modality{subjects.ModalityECG},
			expectedCount:      83,
			excludedNumbers:    []int{17, 37, 66},
			includedNumbers:    []int{13, 94},
		},
		{
			name:               "eeg_only",
			requiredModalities: []subjects.Modality{subjects.ModalityEEG},
			expectedCount:      65,
			excludedNumbers:    []int{13, 31, 37, 66},
			includedNumbers:    []int{32, 94},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			eligibleNumbers, eligibilityError := catalog.EligibleSubjectNumbers(testCase.requiredModalities)
			require.NoError(testInstance, eligibilityError)
			require.Len(testInstance, eligibleNumbers, testCase.expectedCount)
			for _, excludedNumber := range testCase.excludedNumbers {
				require.NotContains(testInstance, eligibleNumbers, excludedNumber)
			}
			for _, includedNumber := range testCase.includedNumbers {
				require.Contains(testInstance, eligibleNumbers, includedNumber)
			}
		})
	}
}

func TestEligibleSubjectNumbersRejectsInvertedRoster(testInstance *testing.T) {
	catalog := subjects.Catalog{RosterStart: 98, RosterEnd: 13}

	_, eligibilityError := catalog.EligibleSubjectNumbers(nil)
	require.ErrorIs(testInstance, eligibilityError, subjects.ErrInvalidRosterBounds)
}

func TestParseModality(testInstance *testing.T) {
	testCases := []struct {
		name             string
		rawModality      string
		expectedModality subjects.Modality
		expectError      bool
	}{
		{name: "eeg", rawModality: "eeg", expectedModality: subjects.ModalityEEG},
		{name: "uppercase_with_spaces", rawModality: " ECG ", expectedModality: subjects.ModalityECG},
		{name: "pupillometry", rawModality: "pupillometry", expectedModality: subjects.ModalityPupillometry},
		{name: "unknown", rawModality: "emg", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			parsedModality, parseError := subjects.ParseModality(testCase.rawModality)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedModality, parsedModality)
		})
	}
}

func TestSubjectIdentifierRoundTrip(testInstance *testing.T) {
	require.Equal(testInstance, "sub-007", subjects.FormatSubjectIdentifier(7))
	require.Equal(testInstance, "sub-120", subjects.FormatSubjectIdentifier(120))

	subjectNumber, parseError := subjects.ParseSubjectIdentifier("sub-032")
	require.NoError(testInstance, parseError)
	require.Equal(testInstance, 32, subjectNumber)

	_, parseError = subjects.ParseSubjectIdentifier("subject-032")
	require.Error(testInstance, parseError)

	_, parseError = subjects.ParseSubjectIdentifier("sub-abc")
	require.Error(testInstance, parseError)
}

func TestResolveIdentifierChecksRosterMembership(testInstance *testing.T) {
	catalog := subjects.DefaultCatalogConfiguration().ToCatalog()

	subjectNumber, resolveError := catalog.ResolveIdentifier("sub-045")
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, 45, subjectNumber)

	_, resolveError = catalog.ResolveIdentifier("sub-120")
	require.Error(testInstance, resolveError)
}

func TestToCatalogFallsBackToDefaultsForEmptyRoster(testInstance *testing.T) {
	catalog := subjects.CatalogConfiguration{}.ToCatalog()
	require.Equal(testInstance, 13, catalog.RosterStart)
	require.Equal(testInstance, 98, catalog.RosterEnd)
	require.NotEmpty(testInstance, catalog.MissingSubjects[subjects.ModalityEEG])
}
