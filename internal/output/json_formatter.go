package output

import (
	"encoding/json"

	"github.com/rgehrsitz/paytax/internal/domain"
	"gopkg.in/yaml.v3"
)

// JSONFormatter renders the run as indented JSON
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(run *domain.PayrollRun) ([]byte, error) {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// YAMLFormatter renders the run as YAML
type YAMLFormatter struct{}

func (y YAMLFormatter) Name() string { return "yaml" }

func (y YAMLFormatter) Format(run *domain.PayrollRun) ([]byte, error) {
	return yaml.Marshal(run)
}
