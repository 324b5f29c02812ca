// Package storage provides the two persistence backends behind the office's
// working data set and the coordinator that decides which one is active. Both
// backends store one JSON value per collection and rewrite every collection
// wholesale on save; there is no delta encoding, no versioning and no
// cross-collection transactionality.
package storage

import (
	"context"

	"juridico/api/internal/collection"
)

// Backend is the capability interface both adapters implement.
type Backend interface {
	// Label identifies the backend on the settings screen.
	Label() string
	// LoadAll reads every collection, substituting defaults per the backend's
	// documented failure semantics.
	LoadAll(ctx context.Context) (collection.Data, error)
	// SaveAll writes every collection. A failed write aborts the remaining
	// ones; earlier writes are not rolled back.
	SaveAll(ctx context.Context, data collection.Data) error
}

// slot pairs a collection name with the destination field and its default,
// so both backends can iterate the data set uniformly.
type slot struct {
	name     string
	dst      any
	fallback func()
}

func slots(data *collection.Data, defaults collection.Data) []slot {
	return []slot{
		{collection.Clients, &data.Clients, func() { data.Clients = defaults.Clients }},
		{collection.Processes, &data.Processes, func() { data.Processes = defaults.Processes }},
		{collection.Lawyers, &data.Lawyers, func() { data.Lawyers = defaults.Lawyers }},
		{collection.UserProfile, &data.UserProfile, func() { data.UserProfile = defaults.UserProfile }},
		{collection.Financials, &data.Financials, func() { data.Financials = defaults.Financials }},
		{collection.Documents, &data.Documents, func() { data.Documents = defaults.Documents }},
		{collection.ClientAccesses, &data.ClientAccesses, func() { data.ClientAccesses = defaults.ClientAccesses }},
		{collection.Events, &data.Events, func() { data.Events = defaults.Events }},
	}
}

// values lists each collection's current value for saving, in the same fixed
// order both backends write.
func values(data collection.Data) []struct {
	name  string
	value any
} {
	return []struct {
		name  string
		value any
	}{
		{collection.Clients, data.Clients},
		{collection.Processes, data.Processes},
		{collection.Lawyers, data.Lawyers},
		{collection.UserProfile, data.UserProfile},
		{collection.Financials, data.Financials},
		{collection.Documents, data.Documents},
		{collection.ClientAccesses, data.ClientAccesses},
		{collection.Events, data.Events},
	}
}
