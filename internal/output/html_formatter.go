package output

import (
	"bytes"
	_ "embed"
	"html/template"

	"github.com/rgehrsitz/paytax/internal/domain"
)

// HTMLFormatter produces a printable payroll register
type HTMLFormatter struct{}

func (h HTMLFormatter) Name() string { return "html" }

//go:embed templates/register.html.tmpl
var htmlTemplateSource string

var htmlTemplate = template.Must(template.New("register").Funcs(template.FuncMap{
	"curr": FormatCurrency,
}).Parse(htmlTemplateSource))

func (h HTMLFormatter) Format(run *domain.PayrollRun) ([]byte, error) {
	var buf bytes.Buffer
	data := struct {
		*domain.PayrollRun
		GrossTotal string
		Missing    int
	}{run, FormatCurrency(grossTotal(run)), missingProfiles(run)}
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
