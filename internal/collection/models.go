// Package collection holds the named entity collections that make up the
// office's working data set. The whole set is loaded at startup, held in
// memory, and rewritten wholesale to the active storage backend on every
// mutation. There is no referential integrity between collections: processes
// reference clients and lawyers by display name, financial entries by numeric
// client id, and deletes do not cascade.
package collection

// Collection names, also used as file names (<name>.json) and KV key suffixes.
const (
	Clients        = "clients"
	Processes      = "processes"
	Lawyers        = "lawyers"
	UserProfile    = "userProfile"
	Financials     = "financials"
	Documents      = "documents"
	ClientAccesses = "clientAccesses"
	Events         = "events"
)

// Names lists every collection in persistence order.
var Names = []string{Clients, Processes, Lawyers, UserProfile, Financials, Documents, ClientAccesses, Events}

type Client struct {
	ID       int    `json:"id"`
	Type     string `json:"type"` // "person" | "company"
	Name     string `json:"name"`
	Contact  string `json:"contact,omitempty"`
	Document string `json:"document"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Status   string `json:"status"` // "ativo" | "inativo" | "pendente"
	Address  string `json:"address,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

type Process struct {
	ID            int    `json:"id"`
	Number        string `json:"number"`
	ClientID      *int   `json:"clientId,omitempty"`
	Client        string `json:"client"` // display convenience; ClientID is the reference
	OpposingParty string `json:"opposingParty"`
	Type          string `json:"type"`
	Status        string `json:"status"` // "active" | "suspended" | "archived" | "extinct"
	Responsible   string `json:"responsible"` // lawyer display name
	LastUpdate    string `json:"lastUpdate"`  // YYYY-MM-DD
}

type Lawyer struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	OAB    string `json:"oab"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Status string `json:"status"` // "ativo" | "inativo"
}

type Profile struct {
	DisplayName string  `json:"displayName"`
	FullName    string  `json:"fullName"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	OAB         string  `json:"oab"`
	OABState    string  `json:"oabState"`
	Bio         string  `json:"bio"`
	AvatarURL   *string `json:"avatarUrl"`
}

type Installment struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

type FinancialItem struct {
	ID                 int         `json:"id"`
	Type               string      `json:"type"` // "revenue" | "expense"
	ClientID           *int        `json:"clientId"` // nil for internal expenses
	Description        string      `json:"description"`
	Value              float64     `json:"value"`
	DueDate            string      `json:"dueDate"`     // YYYY-MM-DD
	PaymentDate        *string     `json:"paymentDate"` // set iff status == "paid"
	Status             string      `json:"status"`      // "paid" | "pending"; "overdue" is derived, never stored
	Installment        Installment `json:"installment"`
	InstallmentGroupID int64       `json:"installmentGroupId"`
	Notes              string      `json:"notes,omitempty"`
}

type DocumentItem struct {
	ID   int    `json:"id"`
	Type string `json:"type"` // "folder" | "file"
	Name string `json:"name"`
	Date string `json:"date,omitempty"` // YYYY-MM-DD, files only
	Size int64  `json:"size,omitempty"` // bytes, files only
	// Count is a display figure for folders; folders do not actually contain
	// files (the list is flat, there are no parent/child links).
	Count int `json:"count,omitempty"`
}

type ClientAccess struct {
	ID           int      `json:"id"`
	ClientID     int      `json:"clientId"`
	ClientName   string   `json:"clientName"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"passwordHash"`
	Processes    []string `json:"processes"` // linked process numbers
	CreatedAt    string   `json:"createdAt"` // YYYY-MM-DD
	LastAccess   *string  `json:"lastAccess"`
	Status       string   `json:"status"` // "ativo" | "pendente" | "inativo"
}

type Event struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Date    string `json:"date"` // YYYY-MM-DD
	Time    string `json:"time"` // HH:MM
	Type    string `json:"type"` // "audience" | "meeting" | "deadline" | "task" | "other"
	Process string `json:"process,omitempty"`
}

// Data is the full in-memory data set, one field per collection.
type Data struct {
	Clients        []Client       `json:"clients"`
	Processes      []Process      `json:"processes"`
	Lawyers        []Lawyer       `json:"lawyers"`
	UserProfile    Profile        `json:"userProfile"`
	Financials     []FinancialItem `json:"financials"`
	Documents      []DocumentItem `json:"documents"`
	ClientAccesses []ClientAccess `json:"clientAccesses"`
	Events         []Event        `json:"events"`
}

// Clone returns a deep copy so callers can hand out snapshots without letting
// readers alias the store's backing slices.
func (d Data) Clone() Data {
	out := Data{
		Clients:     append([]Client(nil), d.Clients...),
		Lawyers:     append([]Lawyer(nil), d.Lawyers...),
		UserProfile: d.UserProfile,
		Documents:   append([]DocumentItem(nil), d.Documents...),
		Events:      append([]Event(nil), d.Events...),
	}
	out.Processes = make([]Process, len(d.Processes))
	for i, process := range d.Processes {
		copied := process
		if process.ClientID != nil {
			clientID := *process.ClientID
			copied.ClientID = &clientID
		}
		out.Processes[i] = copied
	}
	if d.UserProfile.AvatarURL != nil {
		avatar := *d.UserProfile.AvatarURL
		out.UserProfile.AvatarURL = &avatar
	}
	out.Financials = make([]FinancialItem, len(d.Financials))
	for i, item := range d.Financials {
		copied := item
		if item.ClientID != nil {
			clientID := *item.ClientID
			copied.ClientID = &clientID
		}
		if item.PaymentDate != nil {
			paymentDate := *item.PaymentDate
			copied.PaymentDate = &paymentDate
		}
		out.Financials[i] = copied
	}
	out.ClientAccesses = make([]ClientAccess, len(d.ClientAccesses))
	for i, access := range d.ClientAccesses {
		copied := access
		copied.Processes = append([]string(nil), access.Processes...)
		if access.LastAccess != nil {
			last := *access.LastAccess
			copied.LastAccess = &last
		}
		out.ClientAccesses[i] = copied
	}
	return out
}

// DisplayStatus derives the status shown for a financial entry. "overdue" is
// never stored: an unpaid entry whose due date is before today reads as
// overdue, and flips back to pending if the due date is edited forward.
func (f FinancialItem) DisplayStatus(today string) string {
	if f.Status == "pending" && f.DueDate != "" && f.DueDate < today {
		return "overdue"
	}
	return f.Status
}

// NextClientID and friends assign sequential ids the way the source did:
// one past the current maximum within the collection.
func NextClientID(clients []Client) int {
	next := 1
	for _, c := range clients {
		if c.ID >= next {
			next = c.ID + 1
		}
	}
	return next
}

func NextProcessID(processes []Process) int {
	next := 1
	for _, p := range processes {
		if p.ID >= next {
			next = p.ID + 1
		}
	}
	return next
}

func NextLawyerID(lawyers []Lawyer) int {
	next := 1
	for _, l := range lawyers {
		if l.ID >= next {
			next = l.ID + 1
		}
	}
	return next
}

func NextFinancialID(items []FinancialItem) int {
	next := 1
	for _, f := range items {
		if f.ID >= next {
			next = f.ID + 1
		}
	}
	return next
}

func NextDocumentID(items []DocumentItem) int {
	next := 1
	for _, d := range items {
		if d.ID >= next {
			next = d.ID + 1
		}
	}
	return next
}

func NextAccessID(items []ClientAccess) int {
	next := 1
	for _, a := range items {
		if a.ID >= next {
			next = a.ID + 1
		}
	}
	return next
}

func NextEventID(items []Event) int {
	next := 1
	for _, e := range items {
		if e.ID >= next {
			next = e.ID + 1
		}
	}
	return next
}
