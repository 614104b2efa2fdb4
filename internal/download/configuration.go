package download

const (
	datasetPathConfigurationKeySuffixConstant = ".dataset_path"
	sourceURLConfigurationKeySuffixConstant   = ".source_url"
	jobsConfigurationKeySuffixConstant        = ".jobs"
	recursiveConfigurationKeySuffixConstant   = ".recursive"
	reportPathConfigurationKeySuffixConstant  = ".report_path"
)

const (
	defaultParallelJobsConstant = 4
	defaultRecursiveConstant    = true
)

// ServiceConfiguration captures download settings from configuration.
type ServiceConfiguration struct {
	DatasetPath string `mapstructure:"dataset_path"`
	SourceURL   string `mapstructure:"source_url"`
	Jobs        int    `mapstructure:"jobs"`
	Recursive   bool   `mapstructure:"recursive"`
	ReportPath  string `mapstructure:"report_path"`
}

// DefaultServiceConfiguration provides the baseline download settings.
func DefaultServiceConfiguration() ServiceConfiguration {
	return ServiceConfiguration{
		Jobs:      defaultParallelJobsConstant,
		Recursive: defaultRecursiveConstant,
	}
}

// DefaultConfigurationValues exposes download defaults for registration with the configuration loader.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaultConfiguration := DefaultServiceConfiguration()
	return map[string]any{
		configurationKeyPrefix + datasetPathConfigurationKeySuffixConstant: defaultConfiguration.DatasetPath,
		configurationKeyPrefix + sourceURLConfigurationKeySuffixConstant:   defaultConfiguration.SourceURL,
		configurationKeyPrefix + jobsConfigurationKeySuffixConstant:        defaultConfiguration.Jobs,
		configurationKeyPrefix + recursiveConfigurationKeySuffixConstant:   defaultConfiguration.Recursive,
		configurationKeyPrefix + reportPathConfigurationKeySuffixConstant:  defaultConfiguration.ReportPath,
	}
}
