package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paperlane/notes-backend/internal/notes"
	"go.uber.org/zap"
)

var errMissingNotesService = errors.New("notes service dependency required")

// Dependencies carries the collaborators required to build the HTTP handler.
type Dependencies struct {
	NotesService *notes.Service
	Logger       *zap.Logger
}

// NewHTTPHandler assembles the gin router with middleware and all note routes.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.NotesService == nil {
		return nil, errMissingNotesService
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	router.Use(corsMiddleware())

	handler := &httpHandler{
		notesService: deps.NotesService,
		logger:       logger,
	}

	router.GET("/", handler.handleHealth)
	router.POST("/notes", handler.handleCreateNote)
	router.GET("/notes", handler.handleListNotes)
	router.GET("/notes/:id", handler.handleGetNote)
	router.PUT("/notes/:id", handler.handleUpdateNote)
	router.PATCH("/notes/:id", handler.handlePatchNote)
	router.DELETE("/notes/:id", handler.handleDeleteNote)

	return router, nil
}

type httpHandler struct {
	notesService *notes.Service
	logger       *zap.Logger
}

type notePayload struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type createNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type patchNoteRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func toNotePayload(note notes.Note) notePayload {
	return notePayload{
		ID:        note.ID,
		Title:     note.Title,
		Content:   note.Content,
		CreatedAt: note.CreatedAt.UTC(),
		UpdatedAt: note.UpdatedAt.UTC(),
	}
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Healthy"})
}

func (h *httpHandler) handleCreateNote(c *gin.Context) {
	var request createNoteRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondValidationError(c, "request body must be valid JSON")
		return
	}

	title, err := notes.NewNoteTitle(request.Title)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}
	content, err := notes.NewNoteContent(request.Content)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	note, err := h.notesService.Create(c.Request.Context(), title, content)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toNotePayload(note))
}

func (h *httpHandler) handleListNotes(c *gin.Context) {
	stored, err := h.notesService.List(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	payload := make([]notePayload, 0, len(stored))
	for _, note := range stored {
		payload = append(payload, toNotePayload(note))
	}

	c.JSON(http.StatusOK, payload)
}

func (h *httpHandler) handleGetNote(c *gin.Context) {
	id, ok := parseNoteID(c)
	if !ok {
		return
	}

	note, err := h.notesService.Get(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toNotePayload(note))
}

func (h *httpHandler) handleUpdateNote(c *gin.Context) {
	id, ok := parseNoteID(c)
	if !ok {
		return
	}

	var request createNoteRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondValidationError(c, "request body must be valid JSON")
		return
	}

	title, err := notes.NewNoteTitle(request.Title)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}
	content, err := notes.NewNoteContent(request.Content)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	note, err := h.notesService.UpdateFull(c.Request.Context(), id, title, content)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toNotePayload(note))
}

func (h *httpHandler) handlePatchNote(c *gin.Context) {
	id, ok := parseNoteID(c)
	if !ok {
		return
	}

	var request patchNoteRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondValidationError(c, "request body must be valid JSON")
		return
	}

	var title *notes.NoteTitle
	if request.Title != nil {
		parsed, err := notes.NewNoteTitle(*request.Title)
		if err != nil {
			respondValidationError(c, err.Error())
			return
		}
		title = &parsed
	}

	var content *notes.NoteContent
	if request.Content != nil {
		parsed, err := notes.NewNoteContent(*request.Content)
		if err != nil {
			respondValidationError(c, err.Error())
			return
		}
		content = &parsed
	}

	note, err := h.notesService.UpdatePartial(c.Request.Context(), id, title, content)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toNotePayload(note))
}

func (h *httpHandler) handleDeleteNote(c *gin.Context) {
	id, ok := parseNoteID(c)
	if !ok {
		return
	}

	if err := h.notesService.Delete(c.Request.Context(), id); err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// parseNoteID validates the path parameter before any lookup happens.
// Non-integer or non-positive values are a validation failure, not a miss.
func parseNoteID(c *gin.Context) (notes.NoteID, bool) {
	raw, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondValidationError(c, "id must be an integer")
		return 0, false
	}
	id, err := notes.NewNoteID(raw)
	if err != nil {
		respondValidationError(c, "id must be greater than or equal to 1")
		return 0, false
	}
	return id, true
}

func respondValidationError(c *gin.Context, message string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"error":   "validation_failed",
		"message": message,
	})
}

func (h *httpHandler) respondServiceError(c *gin.Context, err error) {
	if errors.Is(err, notes.ErrNoteNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "Note not found",
		})
		return
	}

	var serviceErr *notes.ServiceError
	if errors.As(err, &serviceErr) {
		h.logger.Error("notes request failed", zap.String("code", serviceErr.Code()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"code":    serviceErr.Code(),
			"message": "internal server error",
		})
		return
	}

	h.logger.Error("notes request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "internal_error",
		"message": "internal server error",
	})
}
