package model

import (
	"time"
)

const (
	FileTypeFolder = "folder"
	FileTypeFile   = "file"
	FileTypeImage  = "image"
)

// ValidFileType reports whether t is one of the three accepted file types.
func ValidFileType(t string) bool {
	switch t {
	case FileTypeFolder, FileTypeFile, FileTypeImage:
		return true
	}
	return false
}

type File struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Name      string    `db:"name" json:"name"`
	Type      string    `db:"type" json:"type"`
	Public    bool      `db:"public" json:"isPublic"`
	ParentID  ParentID  `db:"parent_id" json:"parentId"`
	LocalPath *string   `db:"local_path" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}

// HasContent reports whether the file carries stored bytes.
// Folders never have content.
func (f *File) HasContent() bool {
	return f.Type != FileTypeFolder && f.LocalPath != nil
}
