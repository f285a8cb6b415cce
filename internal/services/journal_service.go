package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/openjournal/journal-backend/internal/httperr"
	"github.com/openjournal/journal-backend/internal/models"
	"github.com/openjournal/journal-backend/internal/repository"
)

// JournalUpdate carries the optional fields of a journal PATCH. Nil pointers
// mean "leave untouched". The owner is never part of an update.
type JournalUpdate struct {
	Title       *string
	Description *string
}

// PageInput is the data needed to create a page.
type PageInput struct {
	Title   string
	Content string
	Date    time.Time
	Photo   *models.Photo
}

// PageUpdate carries the optional fields of a page PATCH.
type PageUpdate struct {
	Title   *string
	Content *string
	Date    *time.Time
	Photo   *models.Photo
}

// JournalService enforces the single authorization predicate of the system:
// an operation on a journal is permitted iff the acting user's id equals the
// journal's user_id. Page operations inherit the predicate through their
// parent journal; pages are never addressable outside that check.
type JournalService struct {
	journals repository.JournalRepository
}

func NewJournalService(journals repository.JournalRepository) *JournalService {
	return &JournalService{journals: journals}
}

// CreateJournal creates a journal owned by the user.
func (s *JournalService) CreateJournal(ctx context.Context, user *models.User, title, description string) (*models.Journal, error) {
	now := time.Now().UTC()
	journal := &models.Journal{
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      user.ID,
		Title:       title,
		Description: description,
		Pages:       []models.Page{},
	}
	return s.journals.Insert(ctx, journal)
}

// ListJournals returns only the journals owned by the user.
func (s *JournalService) ListJournals(ctx context.Context, user *models.User) ([]models.Journal, error) {
	return s.journals.FindByUser(ctx, user.ID)
}

// GetJournal fetches a journal the user owns. Existence is checked before
// ownership: a nonexistent id is ErrNotFound for everyone, an existing
// journal owned by someone else is ErrForbidden.
func (s *JournalService) GetJournal(ctx context.Context, user *models.User, id string) (*models.Journal, error) {
	journalID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// A malformed id cannot name any journal
		return nil, httperr.ErrNotFound
	}

	journal, err := s.journals.FindByID(ctx, journalID)
	if err != nil {
		return nil, err
	}

	if journal.UserID != user.ID {
		return nil, httperr.ErrForbidden
	}
	return journal, nil
}

// UpdateJournal merges the provided fields onto the journal and persists it.
func (s *JournalService) UpdateJournal(ctx context.Context, user *models.User, id string, update JournalUpdate) (*models.Journal, error) {
	journal, err := s.GetJournal(ctx, user, id)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		journal.Title = *update.Title
	}
	if update.Description != nil {
		journal.Description = *update.Description
	}
	journal.UpdatedAt = time.Now().UTC()

	if err := s.journals.Replace(ctx, journal); err != nil {
		return nil, err
	}
	return journal, nil
}

// DeleteJournal removes the journal and all its pages atomically and returns
// the deleted document. A second delete on the same id fails ErrNotFound.
func (s *JournalService) DeleteJournal(ctx context.Context, user *models.User, id string) (*models.Journal, error) {
	journal, err := s.GetJournal(ctx, user, id)
	if err != nil {
		return nil, err
	}

	if err := s.journals.Delete(ctx, journal.ID); err != nil {
		return nil, err
	}
	return journal, nil
}

// AddPage appends a new page to the end of the journal's page sequence.
func (s *JournalService) AddPage(ctx context.Context, user *models.User, journalID string, input PageInput) (*models.Journal, error) {
	journal, err := s.GetJournal(ctx, user, journalID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	page := models.Page{
		ID:        primitive.NewObjectID(),
		CreatedAt: now,
		UpdatedAt: now,
		Title:     input.Title,
		Content:   input.Content,
		Date:      input.Date,
		Photo:     input.Photo,
	}
	journal.Pages = append(journal.Pages, page)
	journal.UpdatedAt = now

	if err := s.journals.Replace(ctx, journal); err != nil {
		return nil, err
	}
	return journal, nil
}

// GetPage looks up a page by id within an already-authorized journal.
// Fails ErrPageNotFound, which is distinct from the journal-level ErrNotFound.
func (s *JournalService) GetPage(journal *models.Journal, pageID string) (*models.Page, error) {
	id, err := primitive.ObjectIDFromHex(pageID)
	if err != nil {
		return nil, httperr.ErrPageNotFound
	}
	for i := range journal.Pages {
		if journal.Pages[i].ID == id {
			return &journal.Pages[i], nil
		}
	}
	return nil, httperr.ErrPageNotFound
}

// UpdatePage merges the provided fields onto a page in place. The page keeps
// its position in the sequence.
func (s *JournalService) UpdatePage(ctx context.Context, user *models.User, journalID, pageID string, update PageUpdate) (*models.Journal, error) {
	journal, err := s.GetJournal(ctx, user, journalID)
	if err != nil {
		return nil, err
	}

	page, err := s.GetPage(journal, pageID)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		page.Title = *update.Title
	}
	if update.Content != nil {
		page.Content = *update.Content
	}
	if update.Date != nil {
		page.Date = *update.Date
	}
	if update.Photo != nil {
		page.Photo = update.Photo
	}
	now := time.Now().UTC()
	page.UpdatedAt = now
	journal.UpdatedAt = now

	if err := s.journals.Replace(ctx, journal); err != nil {
		return nil, err
	}
	return journal, nil
}

// DeletePage removes a page from the journal's sequence.
func (s *JournalService) DeletePage(ctx context.Context, user *models.User, journalID, pageID string) (*models.Journal, error) {
	journal, err := s.GetJournal(ctx, user, journalID)
	if err != nil {
		return nil, err
	}

	page, err := s.GetPage(journal, pageID)
	if err != nil {
		return nil, err
	}

	pages := journal.Pages[:0:0]
	for _, p := range journal.Pages {
		if p.ID != page.ID {
			pages = append(pages, p)
		}
	}
	journal.Pages = pages
	journal.UpdatedAt = time.Now().UTC()

	if err := s.journals.Replace(ctx, journal); err != nil {
		return nil, err
	}
	return journal, nil
}
