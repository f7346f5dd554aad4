package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rgehrsitz/paytax/internal/domain"
	"github.com/shopspring/decimal"
)

// Formatter renders a payroll run in one output format
type Formatter interface {
	Name() string
	Format(run *domain.PayrollRun) ([]byte, error)
}

// FormatterFunc adapts a function to the Formatter interface
type FormatterFunc struct {
	ID string
	F  func(run *domain.PayrollRun) ([]byte, error)
}

func (f FormatterFunc) Name() string { return f.ID }

func (f FormatterFunc) Format(run *domain.PayrollRun) ([]byte, error) { return f.F(run) }

var formatters = []Formatter{
	ConsoleFormatter{},
	ConsoleVerboseFormatter{},
	CSVSummarizer{},
	JSONFormatter{},
	YAMLFormatter{},
	HTMLFormatter{},
}

var aliases = map[string]string{
	"verbose":         "console",
	"console-verbose": "console",
	"table":           "console-lite",
	"yml":             "yaml",
}

// GetFormatterByName returns the formatter registered under name or alias,
// or nil when none matches.
func GetFormatterByName(name string) Formatter {
	name = strings.ToLower(strings.TrimSpace(name))
	if target, ok := aliases[name]; ok {
		name = target
	}
	for _, f := range formatters {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

// AvailableFormatterNames lists the registered formatter names
func AvailableFormatterNames() []string {
	names := make([]string, 0, len(formatters))
	for _, f := range formatters {
		names = append(names, f.Name())
	}
	return names
}

// AvailableFormatAliases lists the accepted alternative names
func AvailableFormatAliases() []string {
	out := make([]string, 0, len(aliases))
	for alias := range aliases {
		out = append(out, alias)
	}
	sort.Strings(out)
	return out
}

// GenerateReport renders run with the named formatter to w
func GenerateReport(w io.Writer, run *domain.PayrollRun, format string) error {
	f := GetFormatterByName(format)
	if f == nil {
		return fmt.Errorf("unsupported format: %s (available: %s)", format, strings.Join(AvailableFormatterNames(), ", "))
	}
	data, err := f.Format(run)
	if err != nil {
		return fmt.Errorf("failed to format %s report: %w", f.Name(), err)
	}
	_, err = w.Write(data)
	return err
}

// WriteFormatted writes the formatted run to payroll_run_<timestamp>.<ext>
// in the working directory and returns the file name.
func WriteFormatted(f Formatter, run *domain.PayrollRun, ext string) (string, error) {
	data, err := f.Format(run)
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("payroll_run_%s.%s", time.Now().Format("20060102_150405"), ext)
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return filename, nil
}

// FormatCurrency formats a decimal as currency
func FormatCurrency(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

// FormatPercentage formats a decimal as percentage
func FormatPercentage(amount decimal.Decimal) string {
	return amount.StringFixed(2) + "%"
}
