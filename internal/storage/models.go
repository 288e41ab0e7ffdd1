package storage

import "time"

// Document is a free-form document managed through the CRUD API.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentPatch holds the fields to change on a document. Nil fields are left as they are.
type DocumentPatch struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	Author  *string `json:"author,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p DocumentPatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.Author == nil
}

// Upload is one successful manual upload recorded in the ledger.
type Upload struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	NumChunks int       `json:"num_chunks"`
	Files     []string  `json:"files"`
	CreatedAt time.Time `json:"created_at"`
}
