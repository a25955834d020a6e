package cmd

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/hrism/discord-chatwork-task-bot/models"
)

var jst = time.FixedZone("JST", 9*60*60)

// fixedNow is Tuesday 2025-06-10 09:00 JST.
var fixedNow = time.Date(2025, time.June, 10, 9, 0, 0, 0, jst)

// setupCmdTest isolates config, filesystem and clock for one test.
func setupCmdTest(t *testing.T) afero.Fs {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	for _, name := range []string{"CHATWORK_API_TOKEN", "CHATWORK_ROOM_ID", "OPENAI_API_KEY", "TIMEZONE", "MORNING_NOTIFY_HOUR"} {
		t.Setenv(name, "")
	}

	viper.Reset()
	resetFlags(rootCmd)

	fsys := afero.NewMemMapFs()
	origFs, origNow := appFs, nowFunc
	appFs = fsys
	nowFunc = func() time.Time { return fixedNow }
	t.Cleanup(func() {
		appFs, nowFunc = origFs, origNow
		viper.Reset()
		resetFlags(rootCmd)
	})
	return fsys
}

// resetFlags restores every flag to its default; cobra keeps values between Execute calls.
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

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetIn(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func executeJSON[T any](t *testing.T, args ...string) T {
	t.Helper()
	out, err := execute(t, append(args, "--json")...)
	require.NoError(t, err, out)
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func addTask(t *testing.T, args ...string) models.Task {
	t.Helper()
	return executeJSON[models.Task](t, append([]string{"add"}, args...)...)
}
