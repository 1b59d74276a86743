package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args after restoring every flag to
// its default, and returns what was written to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append(args, "--no-color"))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func sampleCSV(t *testing.T) string {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("..", "..", "..", "dataset", "testdata", "saheart_sample.csv"))
	require.NoError(t, err)
	return path
}

// writeConfig writes a small search config for the sample data.
func writeConfig(t *testing.T) string {
	t.Helper()
	return writeConfigWith(t, "")
}

// writeConfigWith appends extra top-level YAML sections to writeConfig's.
func writeConfigWith(t *testing.T, extra string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logitlab.yaml")
	yaml := `data:
  path: ` + sampleCSV(t) + `
split:
  stratify: true
search:
  cv: 3
  grid:
    - name: alpha
      values: [0.01, 0.1]
    - name: max_iter
      values: [1000]
logging:
  level: error
` + extra
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func lastLines(s string, n int) []string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
