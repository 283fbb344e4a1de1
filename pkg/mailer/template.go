package mailer

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"text/template"
)

// TemplateSource looks up a stored subject and HTML body by key.
type TemplateSource interface {
	LookupTemplate(ctx context.Context, key string) (subject, body string, err error)
}

// TemplateProvider renders templates kept by the template service.
type TemplateProvider struct {
	source    TemplateSource
	transport Transport
}

func NewTemplateProvider(source TemplateSource, transport Transport) *TemplateProvider {
	return &TemplateProvider{source: source, transport: transport}
}

func (p *TemplateProvider) Name() string {
	return "template"
}

func (p *TemplateProvider) Send(ctx context.Context, msg Message) error {
	subjectTpl, bodyTpl, err := p.source.LookupTemplate(ctx, msg.Template)
	if err != nil {
		return err
	}

	subject, err := renderText(msg.Template, subjectTpl, msg.Data)
	if err != nil {
		return err
	}
	body, err := renderHTML(msg.Template, bodyTpl, msg.Data)
	if err != nil {
		return err
	}

	return p.transport.Deliver(ctx, msg.To, subject, body)
}

func renderText(name, tpl string, data map[string]string) (string, error) {
	t, err := template.New(name).Option("missingkey=zero").Parse(tpl)
	if err != nil {
		return "", fmt.Errorf("parse subject template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render subject template %s: %w", name, err)
	}
	return buf.String(), nil
}

func renderHTML(name, tpl string, data map[string]string) (string, error) {
	t, err := htmltemplate.New(name).Option("missingkey=zero").Parse(tpl)
	if err != nil {
		return "", fmt.Errorf("parse body template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render body template %s: %w", name, err)
	}
	return buf.String(), nil
}
