package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns captured stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	// Keep process logs quiet in tests.
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeInput(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.smi")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o644))
	return path
}

func TestFilterCommand(t *testing.T) {
	input := writeInput(t, "CCO ethanol\nC methane\nc1ccccc1 benzene\n")
	outPath := filepath.Join(t.TempDir(), "curated.smi")
	reportPath := filepath.Join(t.TempDir(), "report.json")

	out, err := execute(t, "filter", input, "-o", outPath, "--report", reportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "accepted")

	curated, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "CCO\tethanol\nc1ccccc1\tbenzene\n", string(curated))

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var report map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &report))
	assert.EqualValues(t, 3, report["total"])
	assert.EqualValues(t, 2, report["accepted"])
	assert.EqualValues(t, 1, report["rejected"])
}

func TestFilterCommand_DefaultOutputPath(t *testing.T) {
	assert.Equal(t, "data/raw.curated.smi", defaultOutputPath("data/raw.smi"))
	assert.Equal(t, "chembl.curated.smi", defaultOutputPath("chembl.txt"))
	assert.Equal(t, "nosuffix.curated.smi", defaultOutputPath("nosuffix"))
}

func TestFilterCommand_MissingInput(t *testing.T) {
	_, err := execute(t, "filter", filepath.Join(t.TempDir(), "absent.smi"))
	assert.Error(t, err)
}

func TestVocabAndValidateCommands(t *testing.T) {
	input := writeInput(t, "CCO ethanol\nc1ccccc1 benzene\n")
	curated := filepath.Join(t.TempDir(), "curated.smi")
	vocab := filepath.Join(t.TempDir(), "vocab.json")

	_, err := execute(t, "filter", input, "-o", curated)
	require.NoError(t, err)

	out, err := execute(t, "vocab", curated, "-o", vocab)
	require.NoError(t, err)
	assert.Contains(t, out, "tokens")
	assert.FileExists(t, vocab)

	out, err = execute(t, "validate", curated, "--vocab", vocab)
	require.NoError(t, err)
	assert.Contains(t, out, "stream matches vocabulary")

	// Rewriting the stream after the vocabulary was built must fail the
	// source identity check.
	f, err := os.OpenFile(curated, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("CCN amine\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = execute(t, "validate", curated, "--vocab", vocab)
	assert.Error(t, err)
}

func TestVocabCommand_UploadWithoutObjectStore(t *testing.T) {
	input := writeInput(t, "CCO ethanol\n")
	curated := filepath.Join(t.TempDir(), "curated.smi")
	_, err := execute(t, "filter", input, "-o", curated)
	require.NoError(t, err)

	_, err = execute(t, "vocab", curated,
		"-o", filepath.Join(t.TempDir(), "vocab.json"), "--upload")
	assert.Error(t, err)
}

func TestRootCommand_UnknownSubcommand(t *testing.T) {
	_, err := execute(t, "no-such-command")
	assert.Error(t, err)
}

func TestRootCommand_ConfigFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "smiclean.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
criteria:
  elements: ["H", "C", "O"]
  min_heavy_atoms: 2
  max_heavy_atoms: 10
  max_mol_weight: 500
  min_carbons: 1
log:
  level: error
`), 0o644))

	input := writeInput(t, "CCO ethanol\nCCN amine\n")
	outPath := filepath.Join(t.TempDir(), "curated.smi")

	_, err := execute(t, "--config", cfgPath, "filter", input, "-o", outPath)
	require.NoError(t, err)

	curated, err := os.ReadFile(outPath)
	require.NoError(t, err)
	// Nitrogen is not in the configured element list.
	assert.Equal(t, "CCO\tethanol\n", string(curated))
}
