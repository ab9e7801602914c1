package plan

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/calvinalkan/idfpatch/pkg/idf"
)

// templateData is the dot value of step templates.
//
//	{{.Vars.zone}}           plan variable
//	{{.Name}} {{.Type}}      the step's component
//	{{.Inlet}} {{.Outlet}}   allocated nodes (insert/append)
//	{{.Old.Get "Inlet Node Name"}}  replaced record (replace_component)
type templateData struct {
	Vars   map[string]string
	Name   string
	Type   string
	Inlet  string
	Outlet string
	Old    *idf.Record
}

func expand(name, text string, data templateData) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("%w %s: %w", ErrTemplate, name, err)
	}

	var b strings.Builder

	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("%w %s: %w", ErrTemplate, name, err)
	}

	return b.String(), nil
}

// expandStep expands the plan variables in every name-like field of st.
func expandStep(st Step, vars map[string]string) (Step, error) {
	data := templateData{Vars: vars}

	fields := []*string{
		&st.Type, &st.Name, &st.Branch, &st.NewType, &st.NewName, &st.OutletNode,
		&st.List, &st.ListName, &st.Field, &st.Value, &st.From, &st.To,
	}

	if st.Before != nil {
		before := *st.Before
		st.Before = &before
		fields = append(fields, &before.Type, &before.Name, &before.NameSuffix)
	}

	if st.Loop != nil {
		loop := *st.Loop
		st.Loop = &loop
		fields = append(fields, &loop.BranchList, &loop.Splitter, &loop.Mixer)
	}

	st.Values = append([]string(nil), st.Values...)
	for i := range st.Values {
		fields = append(fields, &st.Values[i])
	}

	for _, f := range fields {
		v, err := expand("field", *f, data)
		if err != nil {
			return Step{}, err
		}

		*f = v
	}

	return st, nil
}
