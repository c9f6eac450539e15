package index

// Index is the search index consumed by the HTTP and MCP layers.
type Index interface {
	UpsertDocument(d Document, body string, mentions []string) error
	DeleteDocument(id string) error
	AllChecksums() (map[string]string, error)
	Search(query string, project *string, limit int) ([]SearchResult, error)
	Mentioning(title string) ([]string, error)
	Close() error
}

var _ Index = (*DB)(nil)
