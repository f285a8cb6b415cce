package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/openjournal/journal-backend/internal/httperr"
	"github.com/openjournal/journal-backend/internal/middleware"
	"github.com/openjournal/journal-backend/internal/models"
	"github.com/openjournal/journal-backend/internal/services"
)

const (
	maxPhotoBytes     = 10 << 20 // 10 MiB
	formOverheadBytes = 1 << 20  // multipart boundaries and headers
)

type CreateJournalRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// UpdateJournalRequest uses pointers so absent fields are left untouched.
type UpdateJournalRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type CreatePageRequest struct {
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
	Date    string `json:"date"`
}

type UpdatePageRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Date    *string `json:"date"`
}

// UserJournalsResponse wraps the journal list.
type UserJournalsResponse struct {
	UserJournals []models.Journal `json:"userJournals"`
}

// JournalHandler exposes journal and page CRUD. Every route it serves sits
// behind the auth guard, so Principal is always set.
type JournalHandler struct {
	journals   *services.JournalService
	cloudinary *services.CloudinaryService
}

func NewJournalHandler(journals *services.JournalService, cloudinary *services.CloudinaryService) *JournalHandler {
	return &JournalHandler{journals: journals, cloudinary: cloudinary}
}

// HealthCheck is the one public journal route.
func (h *JournalHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Journals service is up and running!"))
}

func (h *JournalHandler) CreateJournal(w http.ResponseWriter, r *http.Request) {
	user := middleware.Principal(r)

	var req CreateJournalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msgs := validateJournalTitle(req.Title); len(msgs) > 0 {
		httperr.WriteValidation(w, msgs)
		return
	}

	journal, err := h.journals.CreateJournal(r.Context(), user, req.Title, req.Description)
	if err != nil {
		httperr.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, journal)
}

func (h *JournalHandler) GetAllJournals(w http.ResponseWriter, r *http.Request) {
	user := middleware.Principal(r)

	journals, err := h.journals.ListJournals(r.Context(), user)
	if err != nil {
		httperr.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UserJournalsResponse{UserJournals: journals})
}

func (h *JournalHandler) GetJournal(w http.ResponseWriter, r *http.Request) {
	user := middleware.Principal(r)

	journal, err := h.journals.GetJournal(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		httperr.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, journal)
}

func (h *JournalHandler) UpdateJournal(w http.ResponseWriter, r *http.Request) {
	user := middleware.Principal(r)

	var req UpdateJournalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title != nil {
		if msgs := validateJournalTitle(*req.Title); len(msgs) > 0 {
			httperr.WriteValidation(w, msgs)
			return
		}
	}

	journal, err := h.journals.UpdateJournal(r.Context(), user, chi.URLParam(r, "id"), services.JournalUpdate{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		httperr.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, journal)
}

func (h *JournalHandler) DeleteJournal(w http.ResponseWriter, r *http.Request) {
	user := middleware.Principal(r)

	journal, err := h.journals.DeleteJournal(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		httperr.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, journal)
}

func (h *JournalHandler) CreatePage(w http.ResponseWriter, r *http.Request) {
	user := middleware.Principal(r)

	var req CreatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	msgs, date := validatePage(req.Title, req.Date)
	if len(msgs) > 0 {
		httperr.WriteValidation(w, msgs)
		return
	}

	journal, err := h.journals.AddPage(r.Context(), user, chi.URLParam(r, "id"), services.PageInput{
		Title:   req.Title,
		Content: req.Content,
		Date:    date,
	})
	if err != nil {
		httperr.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, journal)
}

func (h *JournalHandler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	user := middleware.Principal(r)

	var req UpdatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	update := services.PageUpdate{
		Title:   req.Title,
		Content: req.Content,
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		httperr.WriteValidation(w, []string{"title should not be empty"})
		return
	}
	if req.Date != nil {
		parsed, err := time.Parse(time.RFC3339, *req.Date)
		if err != nil {
			httperr.WriteValidation(w, []string{"date must be a valid ISO 8601 date string"})
			return
		}
		update.Date = &parsed
	}

	journal, err := h.journals.UpdatePage(r.Context(), user, chi.URLParam(r, "id"), chi.URLParam(r, "pageId"), update)
	if err != nil {
		httperr.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, journal)
}

func (h *JournalHandler) DeletePage(w http.ResponseWriter, r *http.Request) {
	user := middleware.Principal(r)

	journal, err := h.journals.DeletePage(r.Context(), user, chi.URLParam(r, "id"), chi.URLParam(r, "pageId"))
	if err != nil {
		httperr.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, journal)
}

// UploadPagePhoto attaches a photo to a page from a multipart form. The raw
// bytes are stored with the page; when Cloudinary is configured the photo is
// also pushed there and the hosted URL recorded.
func (h *JournalHandler) UploadPagePhoto(w http.ResponseWriter, r *http.Request) {
	user := middleware.Principal(r)

	// Bound the whole request body; ParseMultipartForm alone only caps the
	// in-memory buffer and spills the rest to disk
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes+formOverheadBytes)

	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httperr.Write(w, http.StatusRequestEntityTooLarge, "photo must be 10 MiB or smaller")
			return
		}
		httperr.Write(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		httperr.WriteValidation(w, []string{"photo file is required"})
		return
	}
	defer file.Close()

	if header.Size > maxPhotoBytes {
		httperr.Write(w, http.StatusRequestEntityTooLarge, "photo must be 10 MiB or smaller")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		httperr.Write(w, http.StatusBadRequest, "Failed to read photo")
		return
	}

	journalID := chi.URLParam(r, "id")
	photo := &models.Photo{
		FieldName:    "photo",
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Data:         data,
	}

	if h.cloudinary != nil {
		url, err := h.cloudinary.UploadPhoto(r.Context(), data, journalID)
		if err != nil {
			httperr.WriteError(w, err)
			return
		}
		photo.URL = url
	}

	journal, err := h.journals.UpdatePage(r.Context(), user, journalID, chi.URLParam(r, "pageId"), services.PageUpdate{
		Photo: photo,
	})
	if err != nil {
		httperr.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, journal)
}
