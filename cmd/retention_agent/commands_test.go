package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/roster-retention/internal/types"
)

var savedIDPattern = regexp.MustCompile(`Saved comparison ([0-9a-f-]{36})`)

func TestCompareCommand(t *testing.T) {
	earlier, current, historyPath := writeRosters(t)
	dir := filepath.Dir(earlier)
	csvPath := filepath.Join(dir, "out.csv")
	jsonPath := filepath.Join(dir, "out.json")

	out, err := executeCLI(t, "compare",
		"--earlier", earlier, "--current", current,
		"--csv", csvPath, "--json", jsonPath,
		"--history", historyPath)
	require.NoError(t, err, out)

	assert.Contains(t, out, "Comparación: anterior.txt → actual.txt")
	assert.Contains(t, out, "50%")
	assert.Contains(t, out, "GOMEZ MARIA")
	assert.Contains(t, out, "LOPEZ CARLA")
	assert.NotContains(t, out, "Saved comparison")

	csv, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Len(t, strings.Split(string(csv), "\n"), 3)

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var result struct {
		Comparison types.Comparison `json:"comparison"`
	}
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, 50, result.Comparison.RetentionRate)
	assert.Len(t, result.Comparison.Dropouts, 2)
}

func TestCompareCommand_Errors(t *testing.T) {
	earlier, current, _ := writeRosters(t)
	emptyRoster := filepath.Join(t.TempDir(), "vacio.pdf")
	require.NoError(t, os.WriteFile(emptyRoster, nil, 0o644))

	tests := []struct {
		name        string
		args        []string
		errorString string
	}{
		{
			name:        "Missing current",
			args:        []string{"compare", "--earlier", earlier},
			errorString: "required",
		},
		{
			name:        "Unknown file",
			args:        []string{"compare", "--earlier", earlier, "--current", filepath.Join(t.TempDir(), "nope.pdf")},
			errorString: "not found",
		},
		{
			name:        "Zero byte roster",
			args:        []string{"compare", "--earlier", emptyRoster, "--current", current},
			errorString: "extraction error",
		},
		{
			name:        "Invalid shift",
			args:        []string{"compare", "--earlier", earlier, "--current", current, "--shift", "Madrugada"},
			errorString: "config error",
		},
		{
			name:        "Unsupported config",
			args:        []string{"compare", "--config", earlier},
			errorString: "unsupported config format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCLI(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}

func TestCompareCommand_ConfigFile(t *testing.T) {
	earlier, current, historyPath := writeRosters(t)
	cfgPath := filepath.Join(filepath.Dir(earlier), "retention.toml")
	cfg := "earlier = \"" + earlier + "\"\ncurrent = \"" + current + "\"\nshift = \"Vespertino\"\nhistory_path = \"" + historyPath + "\"\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	out, err := executeCLI(t, "compare", "--config", cfgPath)
	require.NoError(t, err, out)

	assert.Contains(t, out, "LOPEZ CARLA")
	assert.NotContains(t, out, "GOMEZ MARIA")
}

func TestSaveContactShow(t *testing.T) {
	earlier, current, historyPath := writeRosters(t)

	out, err := executeCLI(t, "compare", "--earlier", earlier, "--current", current, "--save", "--history", historyPath)
	require.NoError(t, err, out)
	m := savedIDPattern.FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	runID := m[1]

	out, err = executeCLI(t, "contact", "--run-id", runID, "--student", "90112233", "--history", historyPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "90112233: Contactado")
	assert.Contains(t, out, "50%")

	out, err = executeCLI(t, "show", "--run-id", runID, "--search", "gomez", "--history", historyPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "GOMEZ MARIA")
	assert.Contains(t, out, "Contactado")
	assert.NotContains(t, out, "LOPEZ CARLA")

	out, err = executeCLI(t, "show", "--history", historyPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, runID)

	_, err = executeCLI(t, "contact", "--run-id", runID, "--student", "33193783", "--history", historyPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not among the dropouts")

	out, err = executeCLI(t, "contact", "--run-id", runID, "--student", "90112233", "--history", historyPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "90112233: Pendiente")
}

func TestShowCommand_Errors(t *testing.T) {
	_, _, historyPath := writeRosters(t)

	out, err := executeCLI(t, "show", "--history", historyPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No saved comparisons")

	_, err = executeCLI(t, "show", "--run-id", "nope", "--history", historyPath)
	assert.ErrorContains(t, err, "invalid run-id")

	_, err = executeCLI(t, "show", "--run-id", "6f1c3bde-9c1e-4c43-9a4f-0d7d4a3f2b10", "--history", historyPath)
	assert.ErrorContains(t, err, "not found")

	_, err = executeCLI(t, "show", "--shift", "Madrugada", "--history", historyPath)
	assert.ErrorContains(t, err, "invalid filter")
}

func TestParseRosterCommand(t *testing.T) {
	earlier, _, _ := writeRosters(t)
	outPath := filepath.Join(filepath.Dir(earlier), "records.json")

	out, err := executeCLI(t, "parse-roster", "--in", earlier, "--out", outPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Extracted 4 students")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var records []types.StudentRecord
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 4)
	assert.Equal(t, "Adultos", records[0].Category)
	assert.Equal(t, "L04", records[2].LevelNormalized)
}

func TestParseRosterCommand_EmptyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n"), 0o644))

	out, err := executeCLI(t, "parse-roster", "--in", path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestParseRosterCommand_RequiresInput(t *testing.T) {
	_, err := executeCLI(t, "parse-roster")
	assert.ErrorContains(t, err, "required")
}

func TestResolvePort(t *testing.T) {
	t.Setenv("PORT", "")
	port, err := resolvePort(0)
	require.NoError(t, err)
	assert.Equal(t, 8080, port)

	port, err = resolvePort(9090)
	require.NoError(t, err)
	assert.Equal(t, 9090, port)

	t.Setenv("PORT", "7000")
	port, err = resolvePort(0)
	require.NoError(t, err)
	assert.Equal(t, 7000, port)

	t.Setenv("PORT", "abc")
	_, err = resolvePort(0)
	assert.Error(t, err)
}

func TestValidateRecordsCommand(t *testing.T) {
	earlier, _, _ := writeRosters(t)
	dir := filepath.Dir(earlier)
	records := filepath.Join(dir, "records.json")
	_, err := executeCLI(t, "parse-roster", "--in", earlier, "--out", records)
	require.NoError(t, err)

	out, err := executeCLI(t, "validate-records", "--in", records)
	require.NoError(t, err)
	assert.Contains(t, out, "valid")

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`[{"id": "abc"}]`), 0o644))
	out, err = executeCLI(t, "validate-records", "--in", broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema violation")
	assert.Contains(t, out, "0.id")
}
