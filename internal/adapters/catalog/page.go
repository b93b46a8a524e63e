package catalog

import (
	"context"
	"html/template"
	"io"
	"sort"

	"go.trai.ch/featreg/internal/core/domain"
	"go.trai.ch/featreg/internal/core/ports"
)

// PageTemplateName is the name of the built-in generic page module.
const PageTemplateName = "pageTemplate"

var pageTmpl = template.Must(template.New(PageTemplateName).Parse(
	`<section class="page-template" data-module="{{.Module}}" data-route="{{.Route}}">` +
		`<h1>{{.Title}}</h1>` +
		`{{if .Content}}<p>{{.Content}}</p>{{end}}` +
		`{{if .Fields}}<dl>{{range .Fields}}<dt>{{.Key}}</dt><dd>{{.Value}}</dd>{{end}}</dl>{{end}}` +
		`</section>`,
))

// PageTemplate is the generic page served for routes no dedicated module owns.
type PageTemplate struct {
	info domain.ModuleInfo
}

// NewPageTemplate creates the page module for key.
func NewPageTemplate(key domain.ModuleKey) ports.Module {
	return &PageTemplate{info: domain.ModuleInfo{
		Name:        key.Name,
		Version:     key.Version,
		Description: "Generic page layout",
		Fields: map[string]any{
			domain.RollbackConditionsField: map[string]any{"errorRate": ">10%", "testFailures": ">2"},
		},
	}}
}

// Info describes the module.
func (p *PageTemplate) Info() domain.ModuleInfo {
	return p.info
}

type pageField struct {
	Key   string
	Value any
}

type pageData struct {
	Module  string
	Route   string
	Title   string
	Content any
	Fields  []pageField
}

// Render writes the page for props. "title", "content" and "route" fill the
// layout; every other prop is listed.
func (p *PageTemplate) Render(ctx context.Context, w io.Writer, props domain.Props) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data := pageData{Module: p.info.Name, Title: "Untitled"}
	for k, v := range props {
		switch k {
		case "title":
			data.Title, _ = v.(string)
		case "content":
			data.Content = v
		case "route":
			data.Route, _ = v.(string)
		default:
			data.Fields = append(data.Fields, pageField{Key: k, Value: v})
		}
	}
	sort.Slice(data.Fields, func(i, j int) bool { return data.Fields[i].Key < data.Fields[j].Key })

	return pageTmpl.Execute(w, data)
}

// Handle echoes the request route with the page that served it.
func (p *PageTemplate) Handle(ctx context.Context, req domain.Request) (domain.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return domain.Response{
		"module":  p.info.Name,
		"version": p.info.Version,
		"route":   req["route"],
	}, nil
}
