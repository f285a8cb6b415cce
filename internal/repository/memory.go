package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/openjournal/journal-backend/internal/httperr"
	"github.com/openjournal/journal-backend/internal/models"
	"github.com/openjournal/journal-backend/pkg/utils"
)

// MemoryUserRepository is an in-memory credential store honoring the same
// contract as the Mongo implementation. Used in tests and local development
// without a database.
type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[string]models.User // keyed by username, Password holds the hash
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]models.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, username, password string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[username]; ok {
		return nil, httperr.ErrConflict
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := models.User{
		ID:        primitive.NewObjectID(),
		CreatedAt: now,
		UpdatedAt: now,
		Username:  username,
		Password:  hash,
	}
	r.users[username] = user

	user.Password = ""
	return &user, nil
}

func (r *MemoryUserRepository) Verify(_ context.Context, username, password string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[username]
	if !ok {
		return nil, httperr.ErrUnauthorized
	}

	match, err := utils.VerifyPassword(password, user.Password)
	if err != nil || !match {
		return nil, httperr.ErrUnauthorized
	}

	user.Password = ""
	return &user, nil
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[username]
	if !ok {
		return nil, httperr.ErrUnauthorized
	}
	user.Password = ""
	return &user, nil
}

// MemoryJournalRepository keeps journals in a map. It hands out copies so
// mutations only land after Replace, matching document-store behavior.
type MemoryJournalRepository struct {
	mu       sync.Mutex
	journals map[primitive.ObjectID]models.Journal
}

func NewMemoryJournalRepository() *MemoryJournalRepository {
	return &MemoryJournalRepository{journals: make(map[primitive.ObjectID]models.Journal)}
}

func copyJournal(j models.Journal) models.Journal {
	pages := make([]models.Page, len(j.Pages))
	copy(pages, j.Pages)
	j.Pages = pages
	return j
}

func (r *MemoryJournalRepository) Insert(_ context.Context, journal *models.Journal) (*models.Journal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	journal.ID = primitive.NewObjectID()
	r.journals[journal.ID] = copyJournal(*journal)
	return journal, nil
}

func (r *MemoryJournalRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Journal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	journal, ok := r.journals[id]
	if !ok {
		return nil, httperr.ErrNotFound
	}
	out := copyJournal(journal)
	return &out, nil
}

func (r *MemoryJournalRepository) FindByUser(_ context.Context, userID primitive.ObjectID) ([]models.Journal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []models.Journal{}
	for _, journal := range r.journals {
		if journal.UserID == userID {
			out = append(out, copyJournal(journal))
		}
	}
	// Same ordering contract as the Mongo repository: created_at ascending.
	// Ids break timestamp ties since ObjectIDs are monotonic within a process.
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.Hex() < out[j].ID.Hex()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryJournalRepository) Replace(_ context.Context, journal *models.Journal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.journals[journal.ID]; !ok {
		return httperr.ErrNotFound
	}
	r.journals[journal.ID] = copyJournal(*journal)
	return nil
}

func (r *MemoryJournalRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.journals[id]; !ok {
		return httperr.ErrNotFound
	}
	delete(r.journals, id)
	return nil
}
