// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data. There is exactly one entity
// here: the Snippet.
package model

// Snippet represents a saved code snippet.
//
// The `json:"..."` tags use snake_case because that is the shape the UI shell
// reads (snippet.is_favorite, snippet.created_at). The `db:"..."` tags let sqlx
// map a row straight into the struct by column name.
//
// ID is the store-assigned row id. A zero ID means "not persisted yet":
// SQLite's AUTOINCREMENT never hands out 0.
//
// Timestamps are RFC 3339 strings, not time.Time. They are written by the
// command surface and the store treats them as opaque TEXT.
type Snippet struct {
	ID         int64  `json:"id"          db:"id"`
	Title      string `json:"title"       db:"title"`
	Code       string `json:"code"        db:"code"`
	Language   string `json:"language"    db:"language"`
	Tags       string `json:"tags"        db:"tags"` // delimited by convention, see SplitTags
	IsFavorite bool   `json:"is_favorite" db:"is_favorite"`
	CreatedAt  string `json:"created_at"  db:"created_at"`
	UpdatedAt  string `json:"updated_at"  db:"updated_at"`
}
