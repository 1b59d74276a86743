package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommandStructure(t *testing.T) {
	assert.NotNil(t, versionCmd)
	assert.Equal(t, "version", versionCmd.Use)
	assert.NotEmpty(t, versionCmd.Short)
	assert.NotEmpty(t, versionCmd.Long)
	assert.NotNil(t, versionCmd.Run)
}

func TestRunVersion(t *testing.T) {
	originalVersion, originalCommit := Version, Commit
	defer func() {
		Version, Commit = originalVersion, originalCommit
	}()

	tests := []struct {
		name         string
		version      string
		commit       string
		wantInOutput []string
	}{
		{
			name:         "dev version",
			version:      "0.0.1-dev",
			commit:       "unknown",
			wantInOutput: []string{"logitlab version 0.0.1-dev", "Commit: unknown", "Go version:", "OS/Arch:"},
		},
		{
			name:         "release version",
			version:      "1.0.0",
			commit:       "abc123def456",
			wantInOutput: []string{"logitlab version 1.0.0", "Commit: abc123def456"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version, Commit = tt.version, tt.commit
			out, err := execute(t, "version")
			require.NoError(t, err)
			for _, want := range tt.wantInOutput {
				assert.Contains(t, out, want)
			}
		})
	}
}
