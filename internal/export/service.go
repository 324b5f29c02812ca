package export

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"juridico/api/internal/collection"
)

// Snapshotter provides a consistent copy of the in-memory data set.
type Snapshotter interface {
	Snapshot() collection.Data
}

// Service builds office reports from the current data set.
type Service struct {
	store Snapshotter
	now   func() time.Time
}

// NewService creates a report export service.
func NewService(store Snapshotter) *Service {
	return &Service{store: store, now: time.Now}
}

// Export generates the requested report in the requested format.
func (s *Service) Export(req Request) (*Result, error) {
	var (
		html  string
		title string
		err   error
	)

	switch req.Report {
	case ReportFinancial:
		title = "Relatorio Financeiro"
		html, err = s.financialHTML(req.Month)
	case ReportProcesses:
		title = "Relatorio de Processos"
		html, err = s.processHTML()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownReport, req.Report)
	}
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	switch req.Format {
	case FormatHTML, "":
		return &Result{
			Data:     []byte(html),
			Filename: sanitizeFilename(title) + ".html",
			MimeType: "text/html; charset=utf-8",
		}, nil
	case FormatPDF:
		return exportPDF(html, title)
	default:
		return nil, fmt.Errorf("unsupported format: %s", req.Format)
	}
}

func (s *Service) financialHTML(month string) (string, error) {
	data := s.store.Snapshot()
	now := s.now()
	today := now.Format("2006-01-02")

	clientNames := make(map[int]string, len(data.Clients))
	for _, client := range data.Clients {
		clientNames[client.ID] = client.Name
	}

	report := FinancialReportData{
		OfficeName:  data.UserProfile.DisplayName,
		Month:       month,
		GeneratedAt: now,
	}

	for _, item := range data.Financials {
		if month != "" && !strings.HasPrefix(item.DueDate, month) {
			continue
		}
		clientName := ""
		if item.ClientID != nil {
			clientName = clientNames[*item.ClientID]
		}
		report.Rows = append(report.Rows, FinancialRow{
			Description: item.Description,
			Client:      clientName,
			Type:        item.Type,
			Value:       item.Value,
			DueDate:     item.DueDate,
			Status:      item.DisplayStatus(today),
		})
		switch item.Type {
		case "revenue":
			report.Revenue += item.Value
		case "expense":
			report.Expenses += item.Value
		}
	}
	report.Balance = report.Revenue - report.Expenses

	sort.SliceStable(report.Rows, func(i, j int) bool {
		return report.Rows[i].DueDate < report.Rows[j].DueDate
	})

	return renderFinancialHTML(report)
}

func (s *Service) processHTML() (string, error) {
	data := s.store.Snapshot()

	report := ProcessReportData{
		OfficeName:  data.UserProfile.DisplayName,
		GeneratedAt: s.now(),
		ByStatus:    make(map[string]int),
	}

	for _, process := range data.Processes {
		report.Rows = append(report.Rows, ProcessRow{
			Number:        process.Number,
			Client:        process.Client,
			OpposingParty: process.OpposingParty,
			Type:          process.Type,
			Responsible:   process.Responsible,
			Status:        process.Status,
			LastUpdate:    process.LastUpdate,
		})
		report.ByStatus[process.Status]++
	}

	sort.SliceStable(report.Rows, func(i, j int) bool {
		return report.Rows[i].Number < report.Rows[j].Number
	})

	return renderProcessHTML(report)
}
