package app

import (
	"context"
	"errors"
	"log"
	"strings"

	"juridico/api/internal/collection"
	"juridico/api/internal/store"
)

// Collection CRUD. Every mutation rewrites the whole data set through the
// persistence coordinator; the search index follows along on a best-effort
// goroutine. Deletes never cascade: a removed client leaves its processes and
// financial entries pointing at a name and id that no longer resolve.

func (s *Service) ListClients() []collection.Client {
	return s.data.Snapshot().Clients
}

func (s *Service) CreateClient(ctx context.Context, client collection.Client) (collection.Client, error) {
	if strings.TrimSpace(client.Name) == "" {
		return collection.Client{}, validationError("O nome do cliente é obrigatório")
	}
	if client.Status == "" {
		client.Status = "ativo"
	}
	err := s.mutate(ctx, func(d *collection.Data) error {
		client.ID = collection.NextClientID(d.Clients)
		d.Clients = append(d.Clients, client)
		return nil
	})
	if err != nil {
		return collection.Client{}, err
	}
	s.reindex()
	return client, nil
}

func (s *Service) UpdateClient(ctx context.Context, id int, client collection.Client) (collection.Client, error) {
	if strings.TrimSpace(client.Name) == "" {
		return collection.Client{}, validationError("O nome do cliente é obrigatório")
	}
	client.ID = id
	err := s.mutate(ctx, func(d *collection.Data) error {
		for i := range d.Clients {
			if d.Clients[i].ID == id {
				d.Clients[i] = client
				return nil
			}
		}
		return notFoundError("Cliente não encontrado")
	})
	if err != nil {
		return collection.Client{}, err
	}
	s.reindex()
	return client, nil
}

func (s *Service) DeleteClient(ctx context.Context, id int) error {
	err := s.mutate(ctx, func(d *collection.Data) error {
		for i, client := range d.Clients {
			if client.ID == id {
				d.Clients = append(d.Clients[:i], d.Clients[i+1:]...)
				return nil
			}
		}
		return notFoundError("Cliente não encontrado")
	})
	if err != nil {
		return err
	}
	s.search.DeleteClient(id)
	return nil
}

func (s *Service) ListProcesses() []collection.Process {
	return s.data.Snapshot().Processes
}

// resolveProcessClient fills the client display name from the id reference.
// The name column is a convenience for list screens, never the link itself.
func resolveProcessClient(d *collection.Data, process *collection.Process) error {
	if process.ClientID == nil {
		return nil
	}
	for _, client := range d.Clients {
		if client.ID == *process.ClientID {
			process.Client = client.Name
			return nil
		}
	}
	return validationError("Cliente do processo não encontrado")
}

func (s *Service) CreateProcess(ctx context.Context, process collection.Process) (collection.Process, error) {
	if strings.TrimSpace(process.Number) == "" {
		return collection.Process{}, validationError("O número do processo é obrigatório")
	}
	if process.Status == "" {
		process.Status = "active"
	}
	if process.LastUpdate == "" {
		process.LastUpdate = s.now().Format("2006-01-02")
	}
	err := s.mutate(ctx, func(d *collection.Data) error {
		if err := resolveProcessClient(d, &process); err != nil {
			return err
		}
		process.ID = collection.NextProcessID(d.Processes)
		d.Processes = append(d.Processes, process)
		return nil
	})
	if err != nil {
		return collection.Process{}, err
	}
	s.reindex()
	return process, nil
}

func (s *Service) UpdateProcess(ctx context.Context, id int, process collection.Process) (collection.Process, error) {
	if strings.TrimSpace(process.Number) == "" {
		return collection.Process{}, validationError("O número do processo é obrigatório")
	}
	process.ID = id
	process.LastUpdate = s.now().Format("2006-01-02")
	err := s.mutate(ctx, func(d *collection.Data) error {
		if err := resolveProcessClient(d, &process); err != nil {
			return err
		}
		for i := range d.Processes {
			if d.Processes[i].ID == id {
				d.Processes[i] = process
				return nil
			}
		}
		return notFoundError("Processo não encontrado")
	})
	if err != nil {
		return collection.Process{}, err
	}
	s.reindex()
	return process, nil
}

func (s *Service) DeleteProcess(ctx context.Context, id int) error {
	err := s.mutate(ctx, func(d *collection.Data) error {
		for i, process := range d.Processes {
			if process.ID == id {
				d.Processes = append(d.Processes[:i], d.Processes[i+1:]...)
				return nil
			}
		}
		return notFoundError("Processo não encontrado")
	})
	if err != nil {
		return err
	}
	s.search.DeleteProcess(id)
	return nil
}

func (s *Service) ListLawyers() []collection.Lawyer {
	return s.data.Snapshot().Lawyers
}

func (s *Service) CreateLawyer(ctx context.Context, lawyer collection.Lawyer) (collection.Lawyer, error) {
	if strings.TrimSpace(lawyer.Name) == "" {
		return collection.Lawyer{}, validationError("O nome do advogado é obrigatório")
	}
	if lawyer.Status == "" {
		lawyer.Status = "ativo"
	}
	err := s.mutate(ctx, func(d *collection.Data) error {
		lawyer.ID = collection.NextLawyerID(d.Lawyers)
		d.Lawyers = append(d.Lawyers, lawyer)
		return nil
	})
	if err != nil {
		return collection.Lawyer{}, err
	}
	return lawyer, nil
}

func (s *Service) UpdateLawyer(ctx context.Context, id int, lawyer collection.Lawyer) (collection.Lawyer, error) {
	if strings.TrimSpace(lawyer.Name) == "" {
		return collection.Lawyer{}, validationError("O nome do advogado é obrigatório")
	}
	lawyer.ID = id
	err := s.mutate(ctx, func(d *collection.Data) error {
		for i := range d.Lawyers {
			if d.Lawyers[i].ID == id {
				d.Lawyers[i] = lawyer
				return nil
			}
		}
		return notFoundError("Advogado não encontrado")
	})
	if err != nil {
		return collection.Lawyer{}, err
	}
	return lawyer, nil
}

func (s *Service) DeleteLawyer(ctx context.Context, id int) error {
	return s.mutate(ctx, func(d *collection.Data) error {
		for i, lawyer := range d.Lawyers {
			if lawyer.ID == id {
				d.Lawyers = append(d.Lawyers[:i], d.Lawyers[i+1:]...)
				return nil
			}
		}
		return notFoundError("Advogado não encontrado")
	})
}

func (s *Service) ListDocuments() []collection.DocumentItem {
	return s.data.Snapshot().Documents
}

func (s *Service) CreateDocument(ctx context.Context, document collection.DocumentItem) (collection.DocumentItem, error) {
	if strings.TrimSpace(document.Name) == "" {
		return collection.DocumentItem{}, validationError("O nome do documento é obrigatório")
	}
	if document.Type != "folder" && document.Type != "file" {
		return collection.DocumentItem{}, validationError("type deve ser 'folder' ou 'file'")
	}
	if document.Type == "file" && document.Date == "" {
		document.Date = s.now().Format("2006-01-02")
	}
	err := s.mutate(ctx, func(d *collection.Data) error {
		document.ID = collection.NextDocumentID(d.Documents)
		d.Documents = append(d.Documents, document)
		return nil
	})
	if err != nil {
		return collection.DocumentItem{}, err
	}
	s.reindex()
	return document, nil
}

func (s *Service) DeleteDocument(ctx context.Context, id int) error {
	err := s.mutate(ctx, func(d *collection.Data) error {
		for i, document := range d.Documents {
			if document.ID == id {
				d.Documents = append(d.Documents[:i], d.Documents[i+1:]...)
				return nil
			}
		}
		return notFoundError("Documento não encontrado")
	})
	if err != nil {
		return err
	}
	s.search.DeleteDocument(id)
	return nil
}

func (s *Service) ListEvents() []collection.Event {
	return s.data.Snapshot().Events
}

func (s *Service) CreateEvent(ctx context.Context, event collection.Event) (collection.Event, error) {
	if strings.TrimSpace(event.Title) == "" || event.Date == "" {
		return collection.Event{}, validationError("Título e data são obrigatórios")
	}
	err := s.mutate(ctx, func(d *collection.Data) error {
		event.ID = collection.NextEventID(d.Events)
		d.Events = append(d.Events, event)
		return nil
	})
	if err != nil {
		return collection.Event{}, err
	}
	return event, nil
}

func (s *Service) UpdateEvent(ctx context.Context, id int, event collection.Event) (collection.Event, error) {
	if strings.TrimSpace(event.Title) == "" || event.Date == "" {
		return collection.Event{}, validationError("Título e data são obrigatórios")
	}
	event.ID = id
	err := s.mutate(ctx, func(d *collection.Data) error {
		for i := range d.Events {
			if d.Events[i].ID == id {
				d.Events[i] = event
				return nil
			}
		}
		return notFoundError("Compromisso não encontrado")
	})
	if err != nil {
		return collection.Event{}, err
	}
	return event, nil
}

func (s *Service) DeleteEvent(ctx context.Context, id int) error {
	return s.mutate(ctx, func(d *collection.Data) error {
		for i, event := range d.Events {
			if event.ID == id {
				d.Events = append(d.Events[:i], d.Events[i+1:]...)
				return nil
			}
		}
		return notFoundError("Compromisso não encontrado")
	})
}

func (s *Service) GetUserProfile() collection.Profile {
	return s.data.Snapshot().UserProfile
}

func (s *Service) UpdateUserProfile(ctx context.Context, profile collection.Profile) (collection.Profile, error) {
	if strings.TrimSpace(profile.DisplayName) == "" {
		return collection.Profile{}, validationError("O nome de exibição é obrigatório")
	}
	err := s.mutate(ctx, func(d *collection.Data) error {
		d.UserProfile = profile
		return nil
	})
	if err != nil {
		return collection.Profile{}, err
	}
	s.syncHostedProfile(ctx, profile)
	return profile, nil
}

// syncHostedProfile propagates the office profile's display name and avatar
// to the matching hosted chat account, so contact lists show the same name.
// Best effort: a profile without a hosted account is normal.
func (s *Service) syncHostedProfile(ctx context.Context, profile collection.Profile) {
	if profile.Email == "" {
		return
	}
	hosted, err := s.profiles.GetProfileByEmail(ctx, profile.Email)
	if errors.Is(err, store.ErrNotFound) {
		return
	}
	if err != nil {
		log.Printf("app: hosted profile lookup: %v", err)
		return
	}
	avatar := ""
	if profile.AvatarURL != nil {
		avatar = *profile.AvatarURL
	}
	if err := s.profiles.UpdateProfile(ctx, hosted.ID, profile.DisplayName, avatar); err != nil {
		log.Printf("app: hosted profile sync: %v", err)
	}
}

func (s *Service) reindex() {
	s.search.Reindex(s.data.Snapshot())
}
