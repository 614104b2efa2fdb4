package subjects

const (
	rosterStartConfigurationKeySuffixConstant         = ".roster_start"
	rosterEndConfigurationKeySuffixConstant           = ".roster_end"
	missingEEGConfigurationKeySuffixConstant          = ".missing_eeg"
	missingECGConfigurationKeySuffixConstant          = ".missing_ecg"
	missingPPGConfigurationKeySuffixConstant          = ".missing_ppg"
	missingPupillometryConfigurationKeySuffixConstant = ".missing_pupillometry"
)

// Dataset description defaults: sub-013..sub-098 with documented gaps.
const (
	defaultRosterStartConstant = 13
	defaultRosterEndConstant   = 98
)

// CatalogConfiguration captures the roster and exclusion lists from configuration.
type CatalogConfiguration struct {
	RosterStart         int   `mapstructure:"roster_start"`
	RosterEnd           int   `mapstructure:"roster_end"`
	MissingEEG          []int `mapstructure:"missing_eeg"`
	MissingECG          []int `mapstructure:"missing_ecg"`
	MissingPPG          []int `mapstructure:"missing_ppg"`
	MissingPupillometry []int `mapstructure:"missing_pupillometry"`
}

// DefaultCatalogConfiguration provides the documented dataset description values.
func DefaultCatalogConfiguration() CatalogConfiguration {
	return CatalogConfiguration{
		RosterStart:         defaultRosterStartConstant,
		RosterEnd:           defaultRosterEndConstant,
		MissingEEG:          defaultMissingEEGSubjects(),
		MissingECG:          []int{17, 37, 66},
		MissingPPG:          []int{17, 37, 66},
		MissingPupillometry: []int{17, 94},
	}
}

// DefaultConfigurationValues exposes catalog defaults for registration with the configuration loader.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaultConfiguration := DefaultCatalogConfiguration()
	return map[string]any{
		configurationKeyPrefix + rosterStartConfigurationKeySuffixConstant:         defaultConfiguration.RosterStart,
		configurationKeyPrefix + rosterEndConfigurationKeySuffixConstant:           defaultConfiguration.RosterEnd,
		configurationKeyPrefix + missingEEGConfigurationKeySuffixConstant:          defaultConfiguration.MissingEEG,
		configurationKeyPrefix + missingECGConfigurationKeySuffixConstant:          defaultConfiguration.MissingECG,
		configurationKeyPrefix + missingPPGConfigurationKeySuffixConstant:          defaultConfiguration.MissingPPG,
		configurationKeyPrefix + missingPupillometryConfigurationKeySuffixConstant: defaultConfiguration.MissingPupillometry,
	}
}

// ToCatalog converts the configuration into a Catalog, falling back to documented defaults for an empty roster.
func (configuration CatalogConfiguration) ToCatalog() Catalog {
	resolvedConfiguration := configuration
	if resolvedConfiguration.RosterStart == 0 && resolvedConfiguration.RosterEnd == 0 {
		resolvedConfiguration = DefaultCatalogConfiguration()
	}

	return Catalog{
		RosterStart: resolvedConfiguration.RosterStart,
		RosterEnd:   resolvedConfiguration.RosterEnd,
		MissingSubjects: map[Modality][]int{
			ModalityEEG:          append([]int{}, resolvedConfiguration.MissingEEG...),
			ModalityECG:          append([]int{}, resolvedConfiguration.MissingECG...),
			ModalityPPG:          append([]int{}, resolvedConfiguration.MissingPPG...),
			ModalityPupillometry: append([]int{}, resolvedConfiguration.MissingPupillometry...),
		},
	}
}

// defaultMissingEEGSubjects enumerates sub-013..sub-031 plus sub-037 and sub-066.
func defaultMissingEEGSubjects() []int {
	missingSubjects := []int{}
	for subjectNumber := 13; subjectNumber <= 31; subjectNumber++ {
		missingSubjects = append(missingSubjects, subjectNumber)
	}
	missingSubjects = append(missingSubjects, 37, 66)
	return missingSubjects
}
