package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/finance-tracker/internal/store"
)

func TestRootCommand(t *testing.T) {
	rootCmd := newRootCmd()
	assert.Equal(t, "finance-tracker", rootCmd.Use)
	assert.Contains(t, rootCmd.Short, "Wise transactions")
	assert.Contains(t, rootCmd.Long, "Finance Tracker")

	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["generate"])
	assert.True(t, names["version"])
	assert.NotNil(t, rootCmd.Flags().Lookup("no-prompt"))
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "finance-tracker dev\n", out)
}

func TestVersionCommand_IgnoresBrokenConfig(t *testing.T) {
	t.Setenv("FINANCE_TOP_N", "0")

	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "finance-tracker dev\n", out)

	_, err = execute(t, "", "--no-prompt")
	assert.Error(t, err)
}

func TestGenerateCommand(t *testing.T) {
	out, err := execute(t, "", "generate", "--rows", "25", "--seed", "3", "--table", "data/transactions.csv")
	require.NoError(t, err)
	assert.Contains(t, out, generatedNotice)

	list, err := store.New(filepath.Join("data", "transactions.csv")).LoadAll()
	require.NoError(t, err)
	assert.Equal(t, 25, list.Total)
}

func TestGenerateCommand_NegativeRows(t *testing.T) {
	_, err := execute(t, "", "generate", "--rows", "-1")
	assert.Error(t, err)
}

func TestRunCommand_Offline(t *testing.T) {
	t.Setenv("WISE_API_BASE_URL", "http://127.0.0.1:1")
	t.Setenv("FINANCE_HTTP_RETRIES", "1")

	out, err := execute(t, "no\n")
	require.NoError(t, err)

	assert.Contains(t, out, "No borderless accounts found.")
	assert.Contains(t, out, "No data available to generate report.")
	assert.Contains(t, out, "sure!")
	assert.Contains(t, out, "your savings are:")

	_, statErr := os.Stat("transactions.csv")
	assert.NoError(t, statErr)
}

func TestRunCommand_ClosedStdin(t *testing.T) {
	t.Setenv("WISE_API_BASE_URL", "http://127.0.0.1:1")
	t.Setenv("FINANCE_HTTP_RETRIES", "1")

	out, err := execute(t, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Do you need to add transactions?")
	assert.Contains(t, out, "your savings are:")
}

func TestRunCommand_NoPrompt(t *testing.T) {
	t.Setenv("WISE_API_BASE_URL", "http://127.0.0.1:1")
	t.Setenv("FINANCE_HTTP_RETRIES", "1")

	out, err := execute(t, "", "--no-prompt")
	require.NoError(t, err)
	assert.NotContains(t, out, "Do you need to add transactions?")
	assert.Contains(t, out, "your savings are:")
}

func TestRunCommand_InvalidEntry(t *testing.T) {
	t.Setenv("WISE_API_BASE_URL", "http://127.0.0.1:1")
	t.Setenv("FINANCE_HTTP_RETRIES", "1")

	_, err := execute(t, "yes\ntransfer\n")
	require.Error(t, err)
	assert.Contains(t, userMessage(err), "'type' has to be either 'income' or 'expense'")
}
