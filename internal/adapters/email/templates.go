package email

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SscSPs/finance_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

const layout = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>{{.Subject}}</title></head>
<body style="margin:0;padding:0;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;background-color:#f3f4f6;">
  <table role="presentation" style="max-width:600px;margin:0 auto;background-color:#ffffff;border-radius:12px;">
    <tr><td style="padding:32px;">
      <h2 style="margin:0 0 16px 0;color:#1f2937;">{{.Subject}}</h2>
      {{if .Name}}<p style="color:#4b5563;">Hi {{.Name}},</p>{{end}}
      <p style="color:#4b5563;">{{.Message}}</p>
      {{template "body" .Data}}
    </td></tr>
  </table>
</body>
</html>`

var bodies = map[domain.EmailKind]string{
	domain.EmailBudget: `{{define "body"}}<table style="width:100%;color:#1f2937;">
  <tr><td>Category</td><td>{{.Category}}</td></tr>
  <tr><td>Spent</td><td>{{money .Spent}} {{.Currency}}</td></tr>
  <tr><td>Limit</td><td>{{money .Limit}} {{.Currency}}</td></tr>
  <tr><td>Remaining</td><td>{{money .Remaining}} {{.Currency}}</td></tr>
  <tr><td>Used</td><td>{{money .Percentage}}%</td></tr>
</table>{{end}}`,
	domain.EmailTransaction: `{{define "body"}}<table style="width:100%;color:#1f2937;">
  <tr><td>Type</td><td>{{.TransactionType}}</td></tr>
  <tr><td>Amount</td><td>{{money .Amount}} {{.Currency}}</td></tr>
  <tr><td>Date</td><td>{{date .Date}}</td></tr>
  {{if .Description}}<tr><td>Description</td><td>{{.Description}}</td></tr>{{end}}
</table>{{end}}`,
	domain.EmailBill: `{{define "body"}}<table style="width:100%;color:#1f2937;">
  <tr><td>Bill</td><td>{{.BillName}}</td></tr>
  <tr><td>Amount</td><td>{{money .Amount}} {{.Currency}}</td></tr>
  <tr><td>Due</td><td>{{date .DueDate}}</td></tr>
</table>{{end}}`,
	domain.EmailGeneral: `{{define "body"}}{{if .Body}}<p style="color:#4b5563;">{{.Body}}</p>{{end}}{{end}}`,
}

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"date":  func(t time.Time) string { return t.Format("Jan 2, 2006") },
}

// Renderer turns e-mail templates into HTML bodies. One parsed template per kind.
type Renderer struct {
	templates map[domain.EmailKind]*template.Template
}

// NewRenderer parses every e-mail layout.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[domain.EmailKind]*template.Template, len(bodies))}
	for kind, body := range bodies {
		t, err := template.New(string(kind)).Funcs(funcs).Parse(layout)
		if err != nil {
			return nil, fmt.Errorf("parse layout for %s: %w", kind, err)
		}
		if _, err := t.Parse(body); err != nil {
			return nil, fmt.Errorf("parse %s body: %w", kind, err)
		}
		r.templates[kind] = t
	}
	return r, nil
}

type view struct {
	Subject string
	Name    string
	Message string
	Data    domain.EmailTemplate
}

// Render produces the HTML body for tmpl addressed to contact.
func (r *Renderer) Render(contact domain.UserContact, tmpl domain.EmailTemplate, message string) (string, error) {
	t, ok := r.templates[tmpl.Kind()]
	if !ok {
		return "", fmt.Errorf("no template for email kind %q", tmpl.Kind())
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, view{Subject: tmpl.Subject(), Name: contact.Name, Message: message, Data: tmpl}); err != nil {
		return "", fmt.Errorf("render %s email: %w", tmpl.Kind(), err)
	}
	return buf.String(), nil
}
