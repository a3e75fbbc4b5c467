package db

// Batch is one generation run against one account.
type Batch struct {
	ID            string
	AccountID     string
	PersonaID     string
	PersonaName   string
	Mode          string
	PostCount     int64
	FallbackCount int64
	PdfFile       string
	TextFile      string
	CreatedAt     int64
}

// Post is one generated record.
type Post struct {
	ID          int64
	BatchID     string
	Number      int64
	Content     string
	Fallback    bool
	GeneratedAt int64
}
