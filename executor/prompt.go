package executor

import (
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/nexuscore/negotiator/entity"
	"github.com/nexuscore/negotiator/errors"
)

type strategyPromptValues struct {
	Clause       string
	PolicyReport string
	RiskReport   string
	Feedback     string
	History      []entity.Message
}

type draftPromptValues struct {
	Clause    string
	Reasoning string
}

var strategyTmpl = template.Must(template.New("strategy").Funcs(sprig.FuncMap()).Parse(`CLAUSE: {{ .Clause }}
POLICY REPORT: {{ .PolicyReport }}
SUPPLIER RISK: {{ .RiskReport }}
{{- if .Feedback }}
REVIEWER FEEDBACK ON PREVIOUS PROPOSAL: {{ .Feedback }}
{{- end }}
{{- if .History }}
RECENT CONVERSATION:
{{- range .History }}
[{{ .Role | upper }}] {{ .Content | trim }}
{{- end }}
{{- end }}`))

var draftTmpl = template.Must(template.New("draft").Funcs(sprig.FuncMap()).Parse(`ORIGINAL: {{ .Clause }}
ISSUE: {{ .Reasoning | trim }}
TASK: Write the new legal text.`))

func renderTemplate(tmpl *template.Template, values any) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, values); err != nil {
		return "", errors.Wrapf(err, "failed to render %s prompt", tmpl.Name())
	}
	return sb.String(), nil
}
