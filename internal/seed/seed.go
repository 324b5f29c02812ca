// Package seed supplies the default contents of every collection, used on
// first run and whenever a stored collection cannot be read.
package seed

import (
	"time"

	"juridico/api/internal/collection"
)

func Clients() []collection.Client {
	return []collection.Client{
		{ID: 1, Type: "company", Name: "Empresa XYZ Ltda.", Contact: "Carlos Pereira", Document: "12.345.678/0001-99", Email: "contato@xyz.com", Phone: "(11) 98765-4321", Status: "ativo"},
		{ID: 2, Type: "company", Name: "Silva & Santos Advogados", Contact: "Dra. Ana Silva", Document: "98.765.432/0001-11", Email: "ana.silva@ssadv.com", Phone: "(21) 91234-5678", Status: "ativo"},
		{ID: 3, Type: "person", Name: "Mariana Costa", Contact: "Mariana Costa", Document: "123.456.789-00", Email: "mariana.costa@email.com", Phone: "(31) 95555-4444", Status: "inativo"},
		{ID: 4, Type: "company", Name: "Comércio LTDA", Contact: "Ricardo Mendes", Document: "45.678.912/0001-33", Email: "ricardo@comercio.com", Phone: "(41) 93333-2222", Status: "pendente"},
	}
}

func Processes() []collection.Process {
	one, two, three, four := 1, 2, 3, 4
	return []collection.Process{
		{ID: 1, Number: "12345/2023", ClientID: &one, Client: "Empresa XYZ Ltda.", OpposingParty: "Empresa ABC Ltda.", Type: "Cível", Status: "active", Responsible: "Dr. João Silva", LastUpdate: "2023-10-25"},
		{ID: 2, Number: "67890/2023", ClientID: &two, Client: "Silva & Santos Advogados", OpposingParty: "João das Neves", Type: "Trabalhista", Status: "active", Responsible: "Dra. Maria Santos", LastUpdate: "2023-10-24"},
		{ID: 3, Number: "54321/2023", ClientID: &three, Client: "Mariana Costa", OpposingParty: "Estado de São Paulo", Type: "Criminal", Status: "suspended", Responsible: "Dr. Pedro Oliveira", LastUpdate: "2023-10-20"},
		{ID: 4, Number: "98765/2023", ClientID: &four, Client: "Comércio LTDA", OpposingParty: "Fisco Municipal", Type: "Tributário", Status: "archived", Responsible: "Dr. João Silva", LastUpdate: "2023-10-15"},
	}
}

func Lawyers() []collection.Lawyer {
	return []collection.Lawyer{
		{ID: 1, Name: "Dr. João Silva", OAB: "123.456", Email: "joao.silva@adv.com", Phone: "(11) 99999-0001", Status: "ativo"},
		{ID: 2, Name: "Dra. Maria Santos", OAB: "789.012", Email: "maria.santos@adv.com", Phone: "(11) 99999-0002", Status: "ativo"},
		{ID: 3, Name: "Dr. Pedro Oliveira", OAB: "345.678", Email: "pedro.oliveira@adv.com", Phone: "(11) 99999-0003", Status: "ativo"},
	}
}

func Profile() collection.Profile {
	avatar := "https://i.pravatar.cc/150?img=12"
	return collection.Profile{
		DisplayName: "Dr. João Silva",
		FullName:    "João Silva",
		Email:       "joao.silva@controlejuridico.com",
		Phone:       "(11) 99999-0001",
		OAB:         "123.456",
		OABState:    "SP",
		Bio:         "Advogado com 15 anos de experiência nas áreas do Direito Civil e Empresarial.",
		AvatarURL:   &avatar,
	}
}

// Financials seeds entries relative to the current month, mirroring the dates
// the dashboard expects on a fresh install.
func Financials() []collection.FinancialItem {
	now := time.Now()
	month := now.Format("2006-01")
	clientOne := 1
	clientTwo := 2
	paidMid := month + "-14"
	paidEarly := month + "-10"
	return []collection.FinancialItem{
		{ID: 1, Type: "revenue", ClientID: &clientOne, Description: "Honorários Iniciais - Processo 12345/2023", Value: 5000, DueDate: month + "-15", PaymentDate: &paidMid, Status: "paid", Installment: collection.Installment{Current: 1, Total: 1}, InstallmentGroupID: 1},
		{ID: 2, Type: "expense", Description: "Custas judiciais", Value: 350.50, DueDate: month + "-10", PaymentDate: &paidEarly, Status: "paid", Installment: collection.Installment{Current: 1, Total: 1}, InstallmentGroupID: 2},
		{ID: 3, Type: "revenue", ClientID: &clientTwo, Description: "Contrato de Êxito - Parcela 1", Value: 1200, DueDate: month + "-20", Status: "pending", Installment: collection.Installment{Current: 1, Total: 3}, InstallmentGroupID: 3},
		{ID: 4, Type: "revenue", ClientID: &clientTwo, Description: "Contrato de Êxito - Parcela 2", Value: 1200, DueDate: now.AddDate(0, 1, 0).Format("2006-01-02"), Status: "pending", Installment: collection.Installment{Current: 2, Total: 3}, InstallmentGroupID: 3},
		{ID: 5, Type: "revenue", ClientID: &clientTwo, Description: "Contrato de Êxito - Parcela 3", Value: 1200, DueDate: now.AddDate(0, 2, 0).Format("2006-01-02"), Status: "pending", Installment: collection.Installment{Current: 3, Total: 3}, InstallmentGroupID: 3},
		{ID: 6, Type: "expense", Description: "Aluguel do escritório", Value: 2500, DueDate: month + "-05", Status: "pending", Installment: collection.Installment{Current: 1, Total: 1}, InstallmentGroupID: 6},
	}
}

func Documents() []collection.DocumentItem {
	return []collection.DocumentItem{
		{ID: 1, Type: "folder", Name: "Processos Ativos", Count: 24},
		{ID: 2, Type: "folder", Name: "Processos Arquivados", Count: 56},
		{ID: 3, Type: "folder", Name: "Modelos", Count: 12},
		{ID: 4, Type: "folder", Name: "Contratos", Count: 8},
		{ID: 5, Type: "file", Name: "Petição Inicial - Processo 12345-2023.pdf", Date: "2023-10-25", Size: 2400000},
		{ID: 6, Type: "file", Name: "Contrato de Prestação de Serviços.docx", Date: "2023-10-20", Size: 1200000},
		{ID: 7, Type: "file", Name: "Planilha de Honorários.xlsx", Date: "2023-10-15", Size: 856000},
		{ID: 8, Type: "file", Name: "Sentença - Processo 67890-2023.pdf", Date: "2023-10-10", Size: 3100000},
		{ID: 9, Type: "file", Name: "Notas.txt", Date: "2023-10-25", Size: 1024},
		{ID: 10, Type: "file", Name: "Parecer Jurídico.docx", Date: "2023-10-26", Size: 1500000},
		{ID: 11, Type: "file", Name: "Procuração.pdf", Date: "2023-10-27", Size: 500000},
		{ID: 12, Type: "folder", Name: "Documentos Fiscais", Count: 5},
		{ID: 13, Type: "file", Name: "Recibo de Pagamento.pdf", Date: "2023-10-28", Size: 300000},
		{ID: 14, Type: "file", Name: "Relatório Mensal.pdf", Date: "2023-10-29", Size: 1800000},
		{ID: 15, Type: "file", Name: "Ata de Reunião.docx", Date: "2023-10-30", Size: 700000},
		{ID: 16, Type: "file", Name: "Certidão Negativa.pdf", Date: "2023-10-31", Size: 450000},
		{ID: 17, Type: "file", Name: "Contrato Social.pdf", Date: "2023-11-01", Size: 2100000},
		{ID: 18, Type: "file", Name: "Declaração de Hipossuficiência.docx", Date: "2023-11-02", Size: 300000},
	}
}

func ClientAccesses() []collection.ClientAccess {
	return []collection.ClientAccess{}
}

func Events() []collection.Event {
	return []collection.Event{
		{ID: 1, Title: "Audiência - Processo 12345/2023", Date: "2023-11-05", Time: "10:00", Type: "audience", Process: "12345/2023"},
		{ID: 2, Title: "Reunião com cliente", Date: "2023-11-10", Time: "14:30", Type: "meeting"},
		{ID: 3, Title: "Prazo para contestação", Date: "2023-11-15", Time: "18:00", Type: "deadline"},
		{ID: 4, Title: "Elaborar petição", Date: "2023-11-05", Time: "09:00", Type: "task"},
		{ID: 5, Title: "Consulta jurídica", Date: "2023-11-20", Time: "11:00", Type: "other"},
	}
}

// Data returns the full default data set.
func Data() collection.Data {
	return collection.Data{
		Clients:        Clients(),
		Processes:      Processes(),
		Lawyers:        Lawyers(),
		UserProfile:    Profile(),
		Financials:     Financials(),
		Documents:      Documents(),
		ClientAccesses: ClientAccesses(),
		Events:         Events(),
	}
}
