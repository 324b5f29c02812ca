package search

import (
	"testing"

	"juridico/api/internal/collection"
	"juridico/api/internal/seed"
)

type fixedSnapshot struct {
	data collection.Data
}

func (f fixedSnapshot) Snapshot() collection.Data {
	return f.data
}

func seededLocal() *Local {
	return NewLocal(fixedSnapshot{data: seed.Data()})
}

func TestLocalFindsClientByName(t *testing.T) {
	local := seededLocal()

	results, total, err := local.Search(Query{Text: "mariana"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if total != 1 || len(results) != 1 {
		t.Fatalf("expected exactly one hit, got total=%d len=%d", total, len(results))
	}
	if results[0].Type != ResultClient || results[0].Title != "Mariana Costa" {
		t.Fatalf("unexpected hit: %+v", results[0])
	}
}

func TestLocalPrefixMatchRanksFirst(t *testing.T) {
	data := collection.Data{
		Clients: []collection.Client{
			{ID: 1, Name: "Fernanda Silva"},
			{ID: 2, Name: "Silva & Santos Advogados"},
		},
	}
	local := NewLocal(fixedSnapshot{data: data})

	results, _, err := local.Search(Query{Text: "silva"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(results))
	}
	if results[0].ID != "2" {
		t.Fatalf("expected prefix match to rank first, got %+v", results[0])
	}
}

func TestLocalTypeFilter(t *testing.T) {
	local := seededLocal()

	results, _, err := local.Search(Query{Text: "a", FilterType: ResultProcess})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for _, result := range results {
		if result.Type != ResultProcess {
			t.Fatalf("type filter leaked %s into results", result.Type)
		}
	}
}

func TestLocalPagination(t *testing.T) {
	var clients []collection.Client
	for i := 1; i <= 25; i++ {
		clients = append(clients, collection.Client{ID: i, Name: "Cliente Teste"})
	}
	local := NewLocal(fixedSnapshot{data: collection.Data{Clients: clients}})

	first, total, err := local.Search(Query{Text: "teste", Limit: 10})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if total != 25 || len(first) != 10 {
		t.Fatalf("expected total=25 page=10, got total=%d page=%d", total, len(first))
	}

	last, total, err := local.Search(Query{Text: "teste", Limit: 10, Offset: 20})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if total != 25 || len(last) != 5 {
		t.Fatalf("expected final page of 5, got total=%d page=%d", total, len(last))
	}

	past, total, err := local.Search(Query{Text: "teste", Limit: 10, Offset: 100})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if total != 25 || len(past) != 0 {
		t.Fatalf("expected empty page past the end, got total=%d page=%d", total, len(past))
	}
}

func TestLocalBlankQueryReturnsNothing(t *testing.T) {
	local := seededLocal()

	results, total, err := local.Search(Query{Text: "   "})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if total != 0 || len(results) != 0 {
		t.Fatalf("expected no hits for blank query, got total=%d len=%d", total, len(results))
	}
}

func TestServiceFallsBackWithoutMeili(t *testing.T) {
	service := NewService(nil, seededLocal())

	resp := service.Search(Query{Text: "empresa xyz"})
	if resp.Query != "empresa xyz" {
		t.Fatalf("expected query echoed back, got %q", resp.Query)
	}
	if len(resp.Results) == 0 {
		t.Fatal("expected at least one hit from the local fallback")
	}
	if resp.Results[0].Title != "Empresa XYZ Ltda." {
		t.Fatalf("unexpected first hit: %+v", resp.Results[0])
	}
}
