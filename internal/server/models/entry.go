// Package models defines server-side data models persisted in the database.
package models

import "time"

// Entry is one travel-journal post. ID is assigned by the store on creation
// and never changes. IsDeleted alone decides whether the entry sits in the
// active or the trash partition.
type Entry struct {
	ID        string    `json:"id"`
	Location  string    `json:"location"`
	Date      string    `json:"date"`
	Comment   string    `json:"comment"`
	PhotoURL  string    `json:"photoURL"`
	Author    string    `json:"author"`
	IsDeleted bool      `json:"isDeleted"`
	Comments  []Comment `json:"comments"`
	CreatedAt time.Time `json:"-"`
}

// Comment is a reply attached to an Entry. Comments are append-only.
// CreatedAt is a date-only string formatted when the comment is written.
type Comment struct {
	Text      string `json:"text"`
	Author    string `json:"author"`
	CreatedAt string `json:"createdAt"`
}

// EntryPatch carries the fields an edit may change. Nil fields are left as
// they are. There is no PhotoURL: it is never overwritten.
type EntryPatch struct {
	Location *string
	Date     *string
	Comment  *string
}

// IsEmpty reports whether the patch changes nothing.
func (p EntryPatch) IsEmpty() bool {
	return p.Location == nil && p.Date == nil && p.Comment == nil
}
