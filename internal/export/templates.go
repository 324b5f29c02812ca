package export

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
)

var reportFuncs = template.FuncMap{
	"brl":      formatBRL,
	"brDate":   formatBRDate,
	"statusPT": statusPT,
}

var (
	financialTemplate = template.Must(template.New("financial").Funcs(reportFuncs).Parse(financialTemplateHTML))
	processTemplate   = template.Must(template.New("processes").Funcs(reportFuncs).Parse(processTemplateHTML))
)

// FinancialRow is one entry of the financial report, with the display status
// already derived (an unpaid entry past its due date shows as overdue).
type FinancialRow struct {
	Description string
	Client      string
	Type        string
	Value       float64
	DueDate     string
	Status      string
}

// FinancialReportData holds data for the financial report template.
type FinancialReportData struct {
	OfficeName  string
	Month       string
	GeneratedAt time.Time
	Rows        []FinancialRow
	Revenue     float64
	Expenses    float64
	Balance     float64
}

// ProcessRow is one entry of the process report.
type ProcessRow struct {
	Number        string
	Client        string
	OpposingParty string
	Type          string
	Responsible   string
	Status        string
	LastUpdate    string
}

// ProcessReportData holds data for the process report template.
type ProcessReportData struct {
	OfficeName  string
	GeneratedAt time.Time
	Rows        []ProcessRow
	ByStatus    map[string]int
}

func renderFinancialHTML(data FinancialReportData) (string, error) {
	var buf bytes.Buffer
	if err := financialTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderProcessHTML(data ProcessReportData) (string, error) {
	var buf bytes.Buffer
	if err := processTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// formatBRL renders a value as Brazilian currency, "R$ 1.234,56".
func formatBRL(value float64) string {
	negative := value < 0
	if negative {
		value = -value
	}
	whole := fmt.Sprintf("%.2f", value)
	parts := strings.SplitN(whole, ".", 2)
	intPart, decPart := parts[0], parts[1]

	var grouped strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(digit)
	}

	out := "R$ " + grouped.String() + "," + decPart
	if negative {
		out = "-" + out
	}
	return out
}

// formatBRDate converts YYYY-MM-DD to DD/MM/YYYY, passing through anything
// that does not parse.
func formatBRDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("02/01/2006")
}

func statusPT(status string) string {
	switch status {
	case "paid":
		return "Pago"
	case "pending":
		return "Pendente"
	case "overdue":
		return "Atrasado"
	case "active":
		return "Ativo"
	case "suspended":
		return "Suspenso"
	case "archived":
		return "Arquivado"
	case "extinct":
		return "Extinto"
	default:
		return status
	}
}

const financialTemplateHTML = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
  <meta charset="UTF-8">
  <title>Relatório Financeiro</title>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.5; max-width: 800px; margin: 2rem auto; color: #222; }
    h1 { border-bottom: 2px solid #333; padding-bottom: 0.5rem; }
    .meta { color: #666; font-size: 0.9em; margin-bottom: 2rem; }
    table { width: 100%; border-collapse: collapse; margin-bottom: 2rem; }
    th, td { text-align: left; padding: 0.4rem 0.6rem; border-bottom: 1px solid #ddd; }
    th { background: #f5f5f5; }
    td.value { text-align: right; white-space: nowrap; }
    .totals { background: #f5f5f5; padding: 1rem; border-left: 3px solid #333; }
    .totals div { display: flex; justify-content: space-between; max-width: 320px; }
  </style>
</head>
<body>
  <h1>Relatório Financeiro</h1>
  <div class="meta">{{.OfficeName}}{{if .Month}} | Competência {{.Month}}{{end}} | Gerado em {{.GeneratedAt.Format "02/01/2006 15:04"}}</div>
  <table>
    <thead>
      <tr><th>Descrição</th><th>Cliente</th><th>Vencimento</th><th>Situação</th><th>Valor</th></tr>
    </thead>
    <tbody>
      {{range .Rows}}
      <tr>
        <td>{{.Description}}</td>
        <td>{{.Client}}</td>
        <td>{{brDate .DueDate}}</td>
        <td>{{statusPT .Status}}</td>
        <td class="value">{{if eq .Type "expense"}}-{{end}}{{brl .Value}}</td>
      </tr>
      {{end}}
    </tbody>
  </table>
  <div class="totals">
    <div><span>Receitas</span><strong>{{brl .Revenue}}</strong></div>
    <div><span>Despesas</span><strong>{{brl .Expenses}}</strong></div>
    <div><span>Saldo</span><strong>{{brl .Balance}}</strong></div>
  </div>
</body>
</html>`

const processTemplateHTML = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
  <meta charset="UTF-8">
  <title>Relatório de Processos</title>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.5; max-width: 800px; margin: 2rem auto; color: #222; }
    h1 { border-bottom: 2px solid #333; padding-bottom: 0.5rem; }
    .meta { color: #666; font-size: 0.9em; margin-bottom: 2rem; }
    table { width: 100%; border-collapse: collapse; margin-bottom: 2rem; }
    th, td { text-align: left; padding: 0.4rem 0.6rem; border-bottom: 1px solid #ddd; font-size: 0.9em; }
    th { background: #f5f5f5; }
    .summary { background: #f5f5f5; padding: 1rem; border-left: 3px solid #333; }
  </style>
</head>
<body>
  <h1>Relatório de Processos</h1>
  <div class="meta">{{.OfficeName}} | Gerado em {{.GeneratedAt.Format "02/01/2006 15:04"}}</div>
  <table>
    <thead>
      <tr><th>Número</th><th>Cliente</th><th>Parte Contrária</th><th>Tipo</th><th>Responsável</th><th>Situação</th><th>Atualização</th></tr>
    </thead>
    <tbody>
      {{range .Rows}}
      <tr>
        <td>{{.Number}}</td>
        <td>{{.Client}}</td>
        <td>{{.OpposingParty}}</td>
        <td>{{.Type}}</td>
        <td>{{.Responsible}}</td>
        <td>{{statusPT .Status}}</td>
        <td>{{brDate .LastUpdate}}</td>
      </tr>
      {{end}}
    </tbody>
  </table>
  <div class="summary">
    {{range $status, $count := .ByStatus}}<div>{{statusPT $status}}: {{$count}}</div>{{end}}
  </div>
</body>
</html>`
