package search

// ResultType identifies the kind of entity in a search result.
type ResultType string

const (
	ResultClient   ResultType = "client"
	ResultProcess  ResultType = "process"
	ResultDocument ResultType = "document"
)

// Result is a single search hit returned to the caller.
type Result struct {
	Type    ResultType `json:"type"`
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Snippet string     `json:"snippet"`
	Status  string     `json:"status,omitempty"`
}

// Query describes a search request.
type Query struct {
	Text       string
	FilterType ResultType // empty = all types
	Limit      int
	Offset     int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// ClientRecord is the data we index for a client.
type ClientRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Document string `json:"document"`
	Type     string `json:"type"`
	Status   string `json:"status"`
}

// ProcessRecord is the data we index for a process.
type ProcessRecord struct {
	ID            string `json:"id"`
	Number        string `json:"number"`
	Client        string `json:"client"`
	OpposingParty string `json:"opposingParty"`
	Type          string `json:"type"`
	Responsible   string `json:"responsible"`
	Status        string `json:"status"`
}

// DocumentRecord is the data we index for a document entry.
type DocumentRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Date string `json:"date"`
}
