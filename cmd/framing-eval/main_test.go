package main

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/framing-eval/internal/app"
)

func TestArgumentValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"run without model", []string{"run", "questions.xlsx"}},
		{"run with extra arg", []string{"run", "q.xlsx", "gpt-4o", "extra"}},
		{"report without file", []string{"report"}},
		{"report with two files", []string{"report", "a.json", "b.json"}},
		{"report with file and run", []string{"report", "a.json", "--run", "abc"}},
		{"history with arg", []string{"history", "x"}},
		{"unknown command", []string{"grade"}},
		{"invalid flag value", []string{"history", "--limit", "many"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			built := false
			root := newRootCmd(func() (*app.App, error) {
				built = true
				return nil, nil
			})

			var stderr bytes.Buffer

			root.SetArgs(tt.args)
			root.SetOut(&bytes.Buffer{})
			root.SetErr(&stderr)

			require.Error(t, root.Execute())
			assert.False(t, built, "application must not be built on usage errors")
			assert.Contains(t, stderr.String(), "Usage:")
		})
	}
}

func TestReportUsageNamesArguments(t *testing.T) {
	root := newRootCmd(func() (*app.App, error) { return nil, nil })

	var stderr bytes.Buffer

	root.SetArgs([]string{"report"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&stderr)

	require.EqualError(t, root.Execute(), "accepts 1 arg(s), received 0")
	assert.Contains(t, stderr.String(), "framing-eval report <results.json>")
}

func TestRootWithoutArgsShowsHelp(t *testing.T) {
	root := newRootCmd(func() (*app.App, error) { return nil, nil })

	var stdout bytes.Buffer

	root.SetArgs([]string{})
	root.SetOut(&stdout)
	root.SetErr(&bytes.Buffer{})

	require.NoError(t, root.Execute())
	assert.Contains(t, stdout.String(), "Available Commands:")
}

func TestHistoryLimitFlag(t *testing.T) {
	cmd := newHistoryCmd(nil)
	require.NoError(t, cmd.ParseFlags([]string{"--limit", "3"}))

	limit, err := cmd.Flags().GetInt("limit")
	require.NoError(t, err)
	assert.Equal(t, 3, limit)
}

func TestNewLogger(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, newLogger("production", "debug").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, newLogger("local", "").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, newLogger("production", "verbose").GetLevel())
}
