package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `as_of: 2024-06-01T00:00:00Z
brackets:
  - country: US
    tax_type: state
    min_income: "0"
    tax_rate: "5"
    effective_date: 2024-01-01T00:00:00Z
    is_active: true
  - country: US
    tax_type: state
    min_income: "0"
    tax_rate: "4.5"
    effective_date: 2023-01-01T00:00:00Z
    end_date: 2023-12-31T00:00:00Z
    is_active: true
profiles:
  - employee_id: E-1
    country: US
    filing_status: single
payroll:
  - employee_id: E-1
    gross_pay: "6000"
    pay_period: monthly
  - employee_id: ghost
    gross_pay: "100"
    pay_period: monthly
`

const e1MonthlyRow = "E-1,monthly,12,6000.00,0.00,300.00,0.00,372.00,87.00,759.00,true"

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "payroll.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0644))
	return path
}

// execute runs a fresh command tree and returns stdout and stderr
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := newRootCmd()

	assert.Equal(t, "paytax", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("debug"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("log-format"))
	assert.NotNil(t, cmd.PersistentFlags().ShorthandLookup("f"))
}

func TestCommandSubcommands(t *testing.T) {
	expected := []string{"calculate", "run", "validate", "brackets", "import", "explore", "version"}

	registered := make(map[string]bool)
	for _, c := range newRootCmd().Commands() {
		registered[c.Name()] = true
	}
	for _, name := range expected {
		assert.True(t, registered[name], "expected command %q to be registered", name)
	}
}

func TestRootCommand_Execute(t *testing.T) {
	stdout, _, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Usage:")
}

func TestRootCommand_InvalidCommand(t *testing.T) {
	_, _, err := execute(t, "invalid-command")
	assert.Error(t, err)
}

func TestRootCommand_InvalidFlag(t *testing.T) {
	_, _, err := execute(t, "--invalid-flag")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "paytax dev (commit none, built unknown)")
}

func TestCalculate_StoredProfile(t *testing.T) {
	cfg := writeConfig(t)

	stdout, _, err := execute(t, "calculate", "-c", cfg, "-e", "E-1", "-g", "6000", "-f", "csv")
	require.NoError(t, err)
	assert.Contains(t, stdout, e1MonthlyRow)
}

func TestCalculate_AdhocProfile(t *testing.T) {
	cfg := writeConfig(t)

	stdout, _, err := execute(t, "calculate", "-c", cfg, "-g", "1000", "-p", "weekly", "--exempt-state", "-f", "csv")
	require.NoError(t, err)
	assert.Contains(t, stdout, "adhoc,weekly,52,1000.00,0.00,0.00,0.00,62.00,14.50,76.50,true")
}

func TestCalculate_ConsoleReport(t *testing.T) {
	cfg := writeConfig(t)

	stdout, _, err := execute(t, "calculate", "-c", cfg, "-e", "E-1", "-g", "$6,000.00")
	require.NoError(t, err)
	assert.Contains(t, stdout, "PAYROLL WITHHOLDING DETAIL")
	assert.Contains(t, stdout, "KEY ASSUMPTIONS")
	assert.Contains(t, stdout, "$759.00")
}

func TestCalculate_Errors(t *testing.T) {
	cfg := writeConfig(t)

	tests := []struct {
		name    string
		args    []string
		errText string
	}{
		{"missing gross", []string{"calculate", "-c", cfg}, `required flag(s) "gross" not set`},
		{"negative gross", []string{"calculate", "-c", cfg, "--gross=-5"}, "invalid gross pay"},
		{"no bracket source", []string{"calculate", "-g", "100"}, "a --config file or --sqlite database is required"},
		{"bad additional", []string{"calculate", "-c", cfg, "-g", "100", "--additional", "ten"}, "invalid --additional amount"},
		{"negative allowances", []string{"calculate", "-c", cfg, "-g", "100", "--allowances=-1"}, "--allowances cannot be negative"},
		{"unsupported format", []string{"calculate", "-c", cfg, "-g", "100", "-f", "xml"}, "unsupported format: xml"},
		{"unknown log format", []string{"calculate", "-c", cfg, "-g", "100", "--log-format", "xml"}, "unknown log format"},
		{"missing config file", []string{"calculate", "-c", "missing.yaml", "-g", "100"}, "failed to read file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestRun_Batch(t *testing.T) {
	cfg := writeConfig(t)
	metricsFile := filepath.Join(t.TempDir(), "paytax.prom")

	stdout, _, err := execute(t, "run", "-c", cfg, "-f", "csv", "--workers", "2", "--metrics-file", metricsFile)
	require.NoError(t, err)

	assert.Contains(t, stdout, e1MonthlyRow)
	assert.Contains(t, stdout, "ghost,monthly,12,100.00,0.00,0.00,0.00,0.00,0.00,0.00,false")
	assert.Contains(t, stdout, "TOTAL,,,6100.00,0.00,300.00,0.00,372.00,87.00,759.00,")

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `paytax_calculations_total{country="US",profile_found="true"} 1`)
}

func TestRun_JSONLogs(t *testing.T) {
	cfg := writeConfig(t)

	_, stderr, err := execute(t, "run", "-c", cfg, "-f", "json", "--log-format", "json")
	require.NoError(t, err)
	assert.Contains(t, stderr, `"component":"paytax"`)
	assert.Contains(t, stderr, `"message":"payroll run complete"`)
	assert.Contains(t, stderr, `"run_id":"`)
}

func TestRun_RequiresConfig(t *testing.T) {
	_, _, err := execute(t, "run", "--sqlite", filepath.Join(t.TempDir(), "paytax.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--config is required")
}

func TestRun_RulesOverrideKeepsZeros(t *testing.T) {
	cfg := writeConfig(t)
	rules := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(rules, []byte("medicare:\n  rate: \"0\"\n"), 0644))

	stdout, _, err := execute(t, "run", "-c", cfg, "--rules", rules, "-f", "csv")
	require.NoError(t, err)
	assert.Contains(t, stdout, "E-1,monthly,12,6000.00,0.00,300.00,0.00,372.00,0.00,672.00,true")
}

func TestValidate(t *testing.T) {
	cfg := writeConfig(t)

	stdout, _, err := execute(t, "validate", cfg)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Configuration is valid: 2 brackets (1 active as of 2024-06-01), 1 profiles, 2 payroll entries")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("profiles:\n  - employee_id: X\n"), 0644))
	_, _, err = execute(t, "validate", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "country is required")
}

func TestBrackets(t *testing.T) {
	cfg := writeConfig(t)

	stdout, _, err := execute(t, "brackets", "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Active brackets as of 2024-06-01")
	assert.Contains(t, stdout, "Social security and medicare withheld for: US")
	assert.Contains(t, stdout, "5.00%")
	assert.NotContains(t, stdout, "4.50%")

	stdout, _, err = execute(t, "brackets", "-c", cfg, "--as-of", "2023-06-01")
	require.NoError(t, err)
	assert.Contains(t, stdout, "4.50%")
	assert.Contains(t, stdout, "2023-12-31")
	assert.NotContains(t, stdout, "5.00%")

	stdout, _, err = execute(t, "brackets", "-c", cfg, "--as-of", "2022-01-01")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No active brackets.")

	_, _, err = execute(t, "brackets", "-c", cfg, "--as-of", "June 1st")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --as-of date")
}

func TestImportThenCalculateFromSQLite(t *testing.T) {
	cfg := writeConfig(t)
	db := filepath.Join(t.TempDir(), "paytax.db")

	stdout, _, err := execute(t, "import", cfg, "--sqlite", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Imported 2 brackets, 1 profiles into "+db)

	stdout, _, err = execute(t, "calculate", "--sqlite", db, "--as-of", "2024-06-01", "-e", "E-1", "-g", "6000", "-f", "csv")
	require.NoError(t, err)
	assert.Contains(t, stdout, e1MonthlyRow)

	stdout, _, err = execute(t, "run", "-c", cfg, "--sqlite", db, "-f", "csv")
	require.NoError(t, err)
	assert.Contains(t, stdout, e1MonthlyRow)

	_, _, err = execute(t, "import", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--sqlite is required")
}
