package notes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errMissingDatabase = errors.New("database handle is required")
	noOpLogger         = zap.NewNop()
)

// ServiceError tags a failure with a machine-readable operation.reason code.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew    = "notes.service.new"
	opCreate        = "notes.create"
	opList          = "notes.list"
	opGet           = "notes.get"
	opUpdateFull    = "notes.update_full"
	opUpdatePartial = "notes.update_partial"
	opDelete        = "notes.delete"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// ServiceConfig carries the dependencies for constructing a Service.
type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Service performs single-row CRUD operations over the notes table. Every
// call acquires its own session from the shared handle; mutations run inside
// a transaction scoped to that one call.
type Service struct {
	db     *gorm.DB
	clock  func() time.Time
	logger *zap.Logger
}

// NewService validates dependencies and returns a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Service{
		db:     cfg.Database,
		clock:  clock,
		logger: logger,
	}, nil
}

// Create persists a new note with both timestamps set to the current instant
// and returns the stored row including its assigned identifier.
func (s *Service) Create(ctx context.Context, title NoteTitle, content NoteContent) (Note, error) {
	if s.db == nil {
		s.logError(opCreate, "missing_database", errMissingDatabase)
		return Note{}, newServiceError(opCreate, "missing_database", errMissingDatabase)
	}

	now := s.clock().UTC()
	note := Note{
		Title:     title.String(),
		Content:   content.String(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.db.WithContext(ctx).Create(&note).Error; err != nil {
		s.logError(opCreate, "insert_failed", err)
		return Note{}, newServiceError(opCreate, "insert_failed", err)
	}

	return note, nil
}

// List returns every stored note ordered by most recently updated first.
// Ties fall back to insertion order so the result is stable.
func (s *Service) List(ctx context.Context) ([]Note, error) {
	if s.db == nil {
		s.logError(opList, "missing_database", errMissingDatabase)
		return nil, newServiceError(opList, "missing_database", errMissingDatabase)
	}

	notes := make([]Note, 0)
	if err := s.db.WithContext(ctx).
		Order("updated_at DESC, id ASC").
		Find(&notes).Error; err != nil {
		s.logError(opList, "query_failed", err)
		return nil, newServiceError(opList, "query_failed", err)
	}

	return notes, nil
}

// Get returns the note for the given identifier or ErrNoteNotFound.
func (s *Service) Get(ctx context.Context, id NoteID) (Note, error) {
	if s.db == nil {
		s.logError(opGet, "missing_database", errMissingDatabase)
		return Note{}, newServiceError(opGet, "missing_database", errMissingDatabase)
	}

	var note Note
	err := s.db.WithContext(ctx).Where("id = ?", id.Int64()).Take(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Note{}, newServiceError(opGet, "not_found", ErrNoteNotFound)
	}
	if err != nil {
		s.logError(opGet, "query_failed", err, zap.Int64("note_id", id.Int64()))
		return Note{}, newServiceError(opGet, "query_failed", err)
	}

	return note, nil
}

// UpdateFull overwrites title and content and refreshes UpdatedAt, even when
// the submitted values equal the stored ones.
func (s *Service) UpdateFull(ctx context.Context, id NoteID, title NoteTitle, content NoteContent) (Note, error) {
	if s.db == nil {
		s.logError(opUpdateFull, "missing_database", errMissingDatabase)
		return Note{}, newServiceError(opUpdateFull, "missing_database", errMissingDatabase)
	}

	var updated Note
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var note Note
		err := tx.Where("id = ?", id.Int64()).Take(&note).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newServiceError(opUpdateFull, "not_found", ErrNoteNotFound)
		}
		if err != nil {
			s.logError(opUpdateFull, "select_failed", err, zap.Int64("note_id", id.Int64()))
			return newServiceError(opUpdateFull, "select_failed", err)
		}

		note.Title = title.String()
		note.Content = content.String()
		note.UpdatedAt = s.clock().UTC()

		if err := tx.Save(&note).Error; err != nil {
			s.logError(opUpdateFull, "save_failed", err, zap.Int64("note_id", id.Int64()))
			return newServiceError(opUpdateFull, "save_failed", err)
		}

		updated = note
		return nil
	})
	if txErr != nil {
		return Note{}, txErr
	}

	return updated, nil
}

// UpdatePartial overwrites only the supplied fields. When neither field is
// supplied the stored row is returned unchanged and UpdatedAt is not bumped.
func (s *Service) UpdatePartial(ctx context.Context, id NoteID, title *NoteTitle, content *NoteContent) (Note, error) {
	if s.db == nil {
		s.logError(opUpdatePartial, "missing_database", errMissingDatabase)
		return Note{}, newServiceError(opUpdatePartial, "missing_database", errMissingDatabase)
	}

	var updated Note
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var note Note
		err := tx.Where("id = ?", id.Int64()).Take(&note).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newServiceError(opUpdatePartial, "not_found", ErrNoteNotFound)
		}
		if err != nil {
			s.logError(opUpdatePartial, "select_failed", err, zap.Int64("note_id", id.Int64()))
			return newServiceError(opUpdatePartial, "select_failed", err)
		}

		changed := false
		if title != nil {
			note.Title = title.String()
			changed = true
		}
		if content != nil {
			note.Content = content.String()
			changed = true
		}

		if changed {
			note.UpdatedAt = s.clock().UTC()
			if err := tx.Save(&note).Error; err != nil {
				s.logError(opUpdatePartial, "save_failed", err, zap.Int64("note_id", id.Int64()))
				return newServiceError(opUpdatePartial, "save_failed", err)
			}
		}

		updated = note
		return nil
	})
	if txErr != nil {
		return Note{}, txErr
	}

	return updated, nil
}

// Delete removes the note permanently or reports ErrNoteNotFound, including
// for a repeated delete of the same identifier.
func (s *Service) Delete(ctx context.Context, id NoteID) error {
	if s.db == nil {
		s.logError(opDelete, "missing_database", errMissingDatabase)
		return newServiceError(opDelete, "missing_database", errMissingDatabase)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var note Note
		err := tx.Where("id = ?", id.Int64()).Take(&note).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newServiceError(opDelete, "not_found", ErrNoteNotFound)
		}
		if err != nil {
			s.logError(opDelete, "select_failed", err, zap.Int64("note_id", id.Int64()))
			return newServiceError(opDelete, "select_failed", err)
		}

		if err := tx.Delete(&Note{}, note.ID).Error; err != nil {
			s.logError(opDelete, "delete_failed", err, zap.Int64("note_id", id.Int64()))
			return newServiceError(opDelete, "delete_failed", err)
		}

		return nil
	})
}

func (s *Service) loggerOrDefault() *zap.Logger {
	if s == nil {
		return noOpLogger
	}
	if s.logger == nil {
		return noOpLogger
	}
	return s.logger
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.loggerOrDefault().Error("notes service error", attrs...)
}
