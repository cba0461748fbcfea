package users

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophersocial/internal/common"
	"github.com/dmitrijs2005/gophersocial/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps identities in process memory. It is used when no
// database is configured and in tests.
type MemoryRepository struct {
	mu         sync.RWMutex
	byID       map[string]*models.User
	byUserName map[string]string
	byEmail    map[string]string
	now        func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:       map[string]*models.User{},
		byUserName: map[string]string{},
		byEmail:    map[string]string{},
		now:        time.Now,
	}
}

func normalize(s string) string { return strings.ToLower(s) }

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUserName[normalize(user.UserName)]; ok {
		return nil, common.ErrUserNameTaken
	}
	if _, ok := r.byEmail[normalize(user.Email)]; ok {
		return nil, common.ErrEmailTaken
	}

	user.ID = uuid.NewString()
	user.CreatedAt = r.now().UTC()

	stored := *user
	r.byID[stored.ID] = &stored
	r.byUserName[normalize(stored.UserName)] = stored.ID
	r.byEmail[normalize(stored.Email)] = stored.ID

	return user, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.copyOf(id)
}

func (r *MemoryRepository) GetByUserName(ctx context.Context, userName string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.copyOf(r.byUserName[normalize(userName)])
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.copyOf(r.byEmail[normalize(email)])
}

func (r *MemoryRepository) SetRefreshToken(ctx context.Context, userID, token string, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return common.ErrorNotFound
	}
	u.RefreshToken = token
	u.RefreshTokenExpiry = expiry.UTC()
	return nil
}

func (r *MemoryRepository) RotateRefreshToken(ctx context.Context, userID, current, next string, nextExpiry, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return common.ErrorNotFound
	}
	if !u.RefreshTokenMatches(current, now) {
		return common.ErrStaleRefreshToken
	}
	u.RefreshToken = next
	u.RefreshTokenExpiry = nextExpiry.UTC()
	return nil
}

func (r *MemoryRepository) ChangePasswordHash(ctx context.Context, userID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = passwordHash
	u.ClearRefreshToken()
	return nil
}

// copyOf must be called with r.mu held.
func (r *MemoryRepository) copyOf(id string) (*models.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}
