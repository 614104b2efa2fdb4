package subjects_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hbclab/neuroget/internal/subjects"
)

func buildSubjectsCommand(testInstance *testing.T) (*bytes.Buffer, func(arguments ...string) error) {
	builder := &subjects.CommandBuilder{
		LoggerProvider:        func() *zap.Logger { return zap.NewNop() },
		ConfigurationProvider: subjects.DefaultCatalogConfiguration,
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(outputBuffer)

	return outputBuffer, func(arguments ...string) error {
		command.SetArgs(arguments)
		return command.Execute()
	}
}

func TestSubjectsCommandListsCompleteSubjects(testInstance *testing.T) {
	outputBuffer, execute := buildSubjectsCommand(testInstance)

	require.NoError(testInstance, execute())

	outputLines := strings.Split(strings.TrimSpace(outputBuffer.String()), "\n")
	require.Len(testInstance, outputLines, 64)
	require.Equal(testInstance, "sub-032", outputLines[0])
	require.Equal(testInstance, "sub-098", outputLines[len(outputLines)-1])
	require.NotContains(testInstance, outputLines, "sub-037")
}

func TestSubjectsCommandHonorsRequiredModalities(testInstance *testing.T) {
	outputBuffer, execute := buildSubjectsCommand(testInstance)

	require.NoError(testInstance, execute("--require", "pupillometry"))

	outputLines := strings.Split(strings.TrimSpace(outputBuffer.String()), "\n")
	require.Len(testInstance, outputLines, 84)
	require.Contains(testInstance, outputLines, "sub-013")
	require.NotContains(testInstance, outputLines, "sub-017")
}

func TestSubjectsCommandSupportsYAMLOutput(testInstance *testing.T) {
	outputBuffer, execute := buildSubjectsCommand(testInstance)

	require.NoError(testInstance, execute("--format", "yaml"))

	renderedOutput := outputBuffer.String()
	require.Contains(testInstance, renderedOutput, "- sub-032")
	require.Contains(testInstance, renderedOutput, "- sub-098")
}

func TestSubjectsCommandRejectsBadInput(testInstance *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
	}{
		{name: "unknown_modality", arguments: []string{"--require", "emg"}},
		{name: "unknown_format", arguments: []string{"--format", "tsv"}},
		{name: "positional_arguments", arguments: []string{"sub-032"}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			_, execute := buildSubjectsCommand(testInstance)
			require.Error(testInstance, execute(testCase.arguments...))
		})
	}
}
