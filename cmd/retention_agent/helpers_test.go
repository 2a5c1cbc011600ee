package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

const earlierRoster = `Categoría: ADULTOS
Nivel: LEVEL 9
Horario: TUESDAY TO FRIDAY / 8:30 A 10:00 AM
1 33193783 PEREZ GARCIA JUAN
2 90112233 GOMEZ MARIA
Nivel: LEVEL 4
Horario: MONDAY / 4:30 PM - 6:00 PM
1 44556677 LOPEZ CARLA
Nivel: LEVEL 19
1 12345678 RUIZ ANA
`

const currentRoster = `Nivel: LEVEL 10
1 33193783 PEREZ GARCIA JUAN
`

// executeCLI runs the root command in-process and returns its stdout. Flag values persist
// between executions, so every flag is restored to its default afterwards.
func executeCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	})

	err := rootCmd.Execute()
	resetFlags(rootCmd)
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// writeRosters places the sample rosters in a temp dir and points the environment at a fresh
// history file.
func writeRosters(t *testing.T) (earlier, current, historyPath string) {
	t.Helper()
	dir := t.TempDir()
	earlier = filepath.Join(dir, "anterior.txt")
	current = filepath.Join(dir, "actual.txt")
	require.NoError(t, os.WriteFile(earlier, []byte(earlierRoster), 0o644))
	require.NoError(t, os.WriteFile(current, []byte(currentRoster), 0o644))

	t.Setenv("DATABASE_URL", "")
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	historyPath = filepath.Join(dir, "history.db")
	return earlier, current, historyPath
}
