package app

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"juridico/api/internal/collection"
)

// FinancialView is a financial entry with its display status derived: an
// unpaid entry past its due date reads as "overdue" without that ever being
// written back to storage.
type FinancialView struct {
	collection.FinancialItem
	DisplayStatus string `json:"displayStatus"`
}

// CreateFinancialInput is the payload for creating a financial entry. Value is
// the total amount; Installments > 1 splits it into that many monthly records.
type CreateFinancialInput struct {
	Type         string  `json:"type"`
	ClientID     *int    `json:"clientId"`
	Description  string  `json:"description"`
	Value        float64 `json:"value"`
	DueDate      string  `json:"dueDate"`
	Status       string  `json:"status"`
	Installments int     `json:"installments"`
	Notes        string  `json:"notes"`
}

func (s *Service) ListFinancials(month string) []FinancialView {
	today := s.now().Format("2006-01-02")
	items := s.data.Snapshot().Financials

	views := make([]FinancialView, 0, len(items))
	for _, item := range items {
		if month != "" && !strings.HasPrefix(item.DueDate, month) {
			continue
		}
		views = append(views, FinancialView{
			FinancialItem: item,
			DisplayStatus: item.DisplayStatus(today),
		})
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].DueDate < views[j].DueDate
	})
	return views
}

// CreateFinancial creates one entry, or a group of monthly installments when
// Installments > 1. Each installment carries value/N rounded to cents, a due
// date advanced one month per step, a "(Parc. i/N)" description suffix, and
// the group id of the first record.
func (s *Service) CreateFinancial(ctx context.Context, input CreateFinancialInput) ([]FinancialView, error) {
	if input.Type != "revenue" && input.Type != "expense" {
		return nil, validationError("type deve ser 'revenue' ou 'expense'")
	}
	if input.Status == "" {
		input.Status = "pending"
	}
	if input.Status != "paid" && input.Status != "pending" {
		return nil, validationError("status deve ser 'paid' ou 'pending'")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, validationError("A descrição é obrigatória")
	}
	if input.Value <= 0 {
		return nil, validationError("O valor deve ser positivo")
	}
	firstDue, err := time.Parse("2006-01-02", input.DueDate)
	if err != nil {
		return nil, validationError("dueDate deve estar no formato YYYY-MM-DD")
	}

	total := input.Installments
	if total < 1 {
		total = 1
	}
	perValue := round2(input.Value / float64(total))
	today := s.now().Format("2006-01-02")

	var created []collection.FinancialItem
	err = s.mutate(ctx, func(d *collection.Data) error {
		groupID := int64(collection.NextFinancialID(d.Financials))
		for i := 0; i < total; i++ {
			item := collection.FinancialItem{
				ID:                 collection.NextFinancialID(d.Financials),
				Type:               input.Type,
				ClientID:           input.ClientID,
				Description:        input.Description,
				Value:              perValue,
				DueDate:            firstDue.AddDate(0, i, 0).Format("2006-01-02"),
				Status:             input.Status,
				Installment:        collection.Installment{Current: i + 1, Total: total},
				InstallmentGroupID: groupID,
				Notes:              input.Notes,
			}
			if total > 1 {
				item.Description = fmt.Sprintf("%s (Parc. %d/%d)", input.Description, i+1, total)
			}
			if item.Status == "paid" {
				paid := today
				item.PaymentDate = &paid
			}
			d.Financials = append(d.Financials, item)
			created = append(created, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	views := make([]FinancialView, 0, len(created))
	for _, item := range created {
		views = append(views, FinancialView{FinancialItem: item, DisplayStatus: item.DisplayStatus(today)})
	}
	return views, nil
}

func (s *Service) UpdateFinancial(ctx context.Context, id int, input CreateFinancialInput) (FinancialView, error) {
	if input.Type != "revenue" && input.Type != "expense" {
		return FinancialView{}, validationError("type deve ser 'revenue' ou 'expense'")
	}
	if input.Status != "paid" && input.Status != "pending" {
		return FinancialView{}, validationError("status deve ser 'paid' ou 'pending'")
	}
	if _, err := time.Parse("2006-01-02", input.DueDate); err != nil {
		return FinancialView{}, validationError("dueDate deve estar no formato YYYY-MM-DD")
	}

	today := s.now().Format("2006-01-02")
	var updated collection.FinancialItem
	err := s.mutate(ctx, func(d *collection.Data) error {
		for i := range d.Financials {
			if d.Financials[i].ID != id {
				continue
			}
			item := &d.Financials[i]
			item.Type = input.Type
			item.ClientID = input.ClientID
			item.Description = input.Description
			item.Value = round2(input.Value)
			item.DueDate = input.DueDate
			item.Notes = input.Notes
			setFinancialStatus(item, input.Status, today)
			updated = *item
			return nil
		}
		return notFoundError("Lançamento não encontrado")
	})
	if err != nil {
		return FinancialView{}, err
	}
	return FinancialView{FinancialItem: updated, DisplayStatus: updated.DisplayStatus(today)}, nil
}

func (s *Service) DeleteFinancial(ctx context.Context, id int) error {
	return s.mutate(ctx, func(d *collection.Data) error {
		for i, item := range d.Financials {
			if item.ID == id {
				d.Financials = append(d.Financials[:i], d.Financials[i+1:]...)
				return nil
			}
		}
		return notFoundError("Lançamento não encontrado")
	})
}

// TogglePaid flips an entry between paid and pending. Becoming paid records
// today as the payment date; going back to pending clears it.
func (s *Service) TogglePaid(ctx context.Context, id int) (FinancialView, error) {
	today := s.now().Format("2006-01-02")
	var updated collection.FinancialItem
	err := s.mutate(ctx, func(d *collection.Data) error {
		for i := range d.Financials {
			if d.Financials[i].ID != id {
				continue
			}
			item := &d.Financials[i]
			if item.Status == "paid" {
				setFinancialStatus(item, "pending", today)
			} else {
				setFinancialStatus(item, "paid", today)
			}
			updated = *item
			return nil
		}
		return notFoundError("Lançamento não encontrado")
	})
	if err != nil {
		return FinancialView{}, err
	}
	return FinancialView{FinancialItem: updated, DisplayStatus: updated.DisplayStatus(today)}, nil
}

// setFinancialStatus keeps the paymentDate invariant: set iff paid.
func setFinancialStatus(item *collection.FinancialItem, status, today string) {
	item.Status = status
	if status == "paid" {
		paid := today
		item.PaymentDate = &paid
	} else {
		item.PaymentDate = nil
	}
}

// DashboardSummary aggregates the figures shown on the dashboard home.
type DashboardSummary struct {
	ActiveClients   int                  `json:"activeClients"`
	ActiveProcesses int                  `json:"activeProcesses"`
	MonthRevenue    float64              `json:"monthRevenue"`
	MonthExpenses   float64              `json:"monthExpenses"`
	MonthBalance    float64              `json:"monthBalance"`
	PendingCount    int                  `json:"pendingCount"`
	OverdueCount    int                  `json:"overdueCount"`
	UpcomingEvents  []collection.Event   `json:"upcomingEvents"`
	RecentProcesses []collection.Process `json:"recentProcesses"`
}

func (s *Service) Dashboard() DashboardSummary {
	data := s.data.Snapshot()
	now := s.now()
	today := now.Format("2006-01-02")
	month := now.Format("2006-01")

	summary := DashboardSummary{}

	for _, client := range data.Clients {
		if client.Status == "ativo" {
			summary.ActiveClients++
		}
	}
	for _, process := range data.Processes {
		if process.Status == "active" {
			summary.ActiveProcesses++
		}
	}

	for _, item := range data.Financials {
		switch item.DisplayStatus(today) {
		case "pending":
			summary.PendingCount++
		case "overdue":
			summary.OverdueCount++
		}
		if !strings.HasPrefix(item.DueDate, month) {
			continue
		}
		switch item.Type {
		case "revenue":
			summary.MonthRevenue += item.Value
		case "expense":
			summary.MonthExpenses += item.Value
		}
	}
	summary.MonthRevenue = round2(summary.MonthRevenue)
	summary.MonthExpenses = round2(summary.MonthExpenses)
	summary.MonthBalance = round2(summary.MonthRevenue - summary.MonthExpenses)

	var upcoming []collection.Event
	for _, event := range data.Events {
		if event.Date >= today {
			upcoming = append(upcoming, event)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		if upcoming[i].Date != upcoming[j].Date {
			return upcoming[i].Date < upcoming[j].Date
		}
		return upcoming[i].Time < upcoming[j].Time
	})
	if len(upcoming) > 5 {
		upcoming = upcoming[:5]
	}
	summary.UpcomingEvents = upcoming

	recent := append([]collection.Process(nil), data.Processes...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].LastUpdate > recent[j].LastUpdate
	})
	if len(recent) > 5 {
		recent = recent[:5]
	}
	summary.RecentProcesses = recent

	return summary
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
