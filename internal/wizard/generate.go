package wizard

import (
	"bytes"
	"text/template"
)

// Answers holds all user responses from the wizard.
type Answers struct {
	Host       string
	Port       string
	Scheme     string
	Token      string
	VerifyTLS  bool
	Datacenter string
	NodeGroups bool
}

const configTemplate = `# consul-awx configuration
# Environment variables (CONSUL_URL, CONSUL_TOKEN, ...) override these values.

[consul]
host = {{ .Host }}
port = {{ .Port }}
scheme = {{ .Scheme }}
verify = {{ if .VerifyTLS }}true{{ else }}false{{ end }}
{{- if .Token }}
token = {{ .Token }}
{{- end }}
{{- if .Datacenter }}
dc = {{ .Datacenter }}
{{- end }}
{{- if .NodeGroups }}
node_groups = true
{{- end }}
`

// GenerateConfig renders the ini config from wizard answers.
func GenerateConfig(answers Answers) (string, error) {
	if answers.Host == "" {
		answers.Host = "127.0.0.1"
	}
	if answers.Port == "" {
		answers.Port = "8500"
	}
	if answers.Scheme == "" {
		answers.Scheme = "http"
	}

	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, answers); err != nil {
		return "", err
	}

	return buf.String(), nil
}
