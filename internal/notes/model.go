package notes

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const maxTitleLength = 255

var (
	// ErrInvalidNoteID indicates that a note identifier is not a positive integer.
	ErrInvalidNoteID = errors.New("notes: invalid note id")
	// ErrInvalidTitle indicates that a title is blank after trimming or exceeds storage bounds.
	ErrInvalidTitle = errors.New("notes: invalid title")
	// ErrInvalidContent indicates that content is blank after trimming.
	ErrInvalidContent = errors.New("notes: invalid content")
	// ErrNoteNotFound indicates that no note exists for the given identifier.
	ErrNoteNotFound = errors.New("notes: note not found")
)

// NoteID represents a validated note identifier.
type NoteID int64

// NewNoteID validates raw input and returns a NoteID. Identifiers are
// storage-assigned and start at 1.
func NewNoteID(rawValue int64) (NoteID, error) {
	if rawValue < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidNoteID, rawValue)
	}
	return NoteID(rawValue), nil
}

// Int64 exposes the raw identifier value.
func (id NoteID) Int64() int64 {
	return int64(id)
}

// NoteTitle represents a validated, trimmed note title.
type NoteTitle string

// NewNoteTitle trims surrounding whitespace and validates length bounds.
func NewNoteTitle(rawInput string) (NoteTitle, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", fmt.Errorf("%w: blank", ErrInvalidTitle)
	}
	if utf8.RuneCountInString(trimmed) > maxTitleLength {
		return "", fmt.Errorf("%w: exceeds %d characters", ErrInvalidTitle, maxTitleLength)
	}
	return NoteTitle(trimmed), nil
}

// String returns the underlying trimmed title.
func (t NoteTitle) String() string {
	return string(t)
}

// NoteContent represents a validated, trimmed note body.
type NoteContent string

// NewNoteContent trims surrounding whitespace and rejects blank input.
func NewNoteContent(rawInput string) (NoteContent, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", fmt.Errorf("%w: blank", ErrInvalidContent)
	}
	return NoteContent(trimmed), nil
}

// String returns the underlying trimmed content.
func (c NoteContent) String() string {
	return string(c)
}

// Note models the persisted note row. Timestamp tracking is owned by the
// service so a no-op partial update never touches UpdatedAt; GORM's automatic
// bookkeeping is disabled.
type Note struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Title     string    `gorm:"column:title;size:255;not null"`
	Content   string    `gorm:"column:content;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime:false;autoUpdateTime:false"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;autoCreateTime:false;autoUpdateTime:false;index:idx_notes_updated"`
}

// TableName provides the explicit table binding for GORM.
func (Note) TableName() string {
	return "notes"
}
