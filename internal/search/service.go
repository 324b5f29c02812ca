package search

import (
	"log"
	"strconv"

	"juridico/api/internal/collection"
)

// Service is the facade that tries Meilisearch first and falls back to
// scanning the in-memory collections.
type Service struct {
	meili *Meili
	local *Local
}

// NewService creates a search service. meili may be nil if Meilisearch is not
// configured.
func NewService(meili *Meili, local *Local) *Service {
	return &Service{meili: meili, local: local}
}

// Search tries Meilisearch if healthy, otherwise falls back to the local scan.
func (s *Service) Search(q Query) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text}
		}
		log.Printf("search: meilisearch error, falling back to local scan: %v", err)
	}

	results, total, err := s.local.Search(q)
	if err != nil {
		log.Printf("search: local scan error: %v", err)
		return Response{Results: []Result{}, Total: 0, Query: q.Text}
	}
	return Response{Results: nonNil(results), Total: total, Query: q.Text}
}

// Reindex pushes the full data set into Meilisearch (fire-and-forget). The
// collections are rewritten wholesale on every save, so reindexing the whole
// snapshot after a mutation is the simplest way to keep the index current.
func (s *Service) Reindex(data collection.Data) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexClients(clientRecords(data.Clients)); err != nil {
			log.Printf("search: reindex clients: %v", err)
		}
		if err := s.meili.IndexProcesses(processRecords(data.Processes)); err != nil {
			log.Printf("search: reindex processes: %v", err)
		}
		if err := s.meili.IndexDocuments(documentRecords(data.Documents)); err != nil {
			log.Printf("search: reindex documents: %v", err)
		}
	}()
}

// DeleteClient removes a client from the index (fire-and-forget).
func (s *Service) DeleteClient(id int) {
	s.deleteByID(id, s.meiliDeleteClient)
}

// DeleteProcess removes a process from the index (fire-and-forget).
func (s *Service) DeleteProcess(id int) {
	s.deleteByID(id, s.meiliDeleteProcess)
}

// DeleteDocument removes a document entry from the index (fire-and-forget).
func (s *Service) DeleteDocument(id int) {
	s.deleteByID(id, s.meiliDeleteDocument)
}

func (s *Service) deleteByID(id int, del func(string) error) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := del(strconv.Itoa(id)); err != nil {
			log.Printf("search: delete %d: %v", id, err)
		}
	}()
}

func (s *Service) meiliDeleteClient(id string) error   { return s.meili.DeleteClient(id) }
func (s *Service) meiliDeleteProcess(id string) error  { return s.meili.DeleteProcess(id) }
func (s *Service) meiliDeleteDocument(id string) error { return s.meili.DeleteDocument(id) }

func clientRecords(clients []collection.Client) []ClientRecord {
	records := make([]ClientRecord, 0, len(clients))
	for _, client := range clients {
		records = append(records, ClientRecord{
			ID:       strconv.Itoa(client.ID),
			Name:     client.Name,
			Email:    client.Email,
			Phone:    client.Phone,
			Document: client.Document,
			Type:     client.Type,
			Status:   client.Status,
		})
	}
	return records
}

func processRecords(processes []collection.Process) []ProcessRecord {
	records := make([]ProcessRecord, 0, len(processes))
	for _, process := range processes {
		records = append(records, ProcessRecord{
			ID:            strconv.Itoa(process.ID),
			Number:        process.Number,
			Client:        process.Client,
			OpposingParty: process.OpposingParty,
			Type:          process.Type,
			Responsible:   process.Responsible,
			Status:        process.Status,
		})
	}
	return records
}

func documentRecords(documents []collection.DocumentItem) []DocumentRecord {
	records := make([]DocumentRecord, 0, len(documents))
	for _, document := range documents {
		records = append(records, DocumentRecord{
			ID:   strconv.Itoa(document.ID),
			Name: document.Name,
			Type: document.Type,
			Date: document.Date,
		})
	}
	return records
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}
