package prompts

import (
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/cockroachdb/errors"
)

// ErrNeedMoreVariables is returned when a required input variable is not provided
var ErrNeedMoreVariables = errors.New("missing key in input variables")

// PromptTemplate is a text/template with sprig functions
type PromptTemplate struct {
	// Template is the prompt template.
	Template string
	// InputVariables is a list of variable names the template expects.
	InputVariables []string
	// PartialVariables are default values merged into the inputs.
	PartialVariables map[string]any
}

// NewPromptTemplate returns a new prompt template.
func NewPromptTemplate(template string, inputVars []string) PromptTemplate {
	return PromptTemplate{
		Template:       template,
		InputVariables: inputVars,
	}
}

// WithPartialVariables returns a copy of the template with default values
func (p PromptTemplate) WithPartialVariables(vals map[string]any) PromptTemplate {
	merged := make(map[string]any, len(p.PartialVariables)+len(vals))
	for k, v := range p.PartialVariables {
		merged[k] = v
	}
	for k, v := range vals {
		merged[k] = v
	}
	p.PartialVariables = merged
	return p
}

// Format renders the template with the provided values
func (p PromptTemplate) Format(values map[string]any) (string, error) {
	vals := make(map[string]any, len(p.PartialVariables)+len(values))
	for k, v := range p.PartialVariables {
		vals[k] = v
	}
	for k, v := range values {
		vals[k] = v
	}

	for _, name := range p.InputVariables {
		if _, ok := vals[name]; !ok {
			return "", errors.WithMessagef(ErrNeedMoreVariables, "%q", name)
		}
	}

	tmpl, err := template.New("prompt").
		Option("missingkey=error").
		Funcs(sprig.TxtFuncMap()).
		Parse(p.Template)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse template")
	}

	var sb strings.Builder
	if err = tmpl.Execute(&sb, vals); err != nil {
		return "", errors.Wrap(err, "failed to execute template")
	}
	return sb.String(), nil
}
