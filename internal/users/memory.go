package users

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/profilekit/profilekit/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepository is an in-memory Repository used by tests. It mirrors
// the Mongo repository's observable behavior: uniqueness conflicts,
// (nil, nil) misses, password always stripped from query results.
type MemoryRepository struct {
	mu    sync.RWMutex
	byID  map[primitive.ObjectID]*models.User
	order []primitive.ObjectID
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: map[primitive.ObjectID]*models.User{}}
}

func (r *MemoryRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return nil, fmt.Errorf("%w: email %q", ErrConflict, u.Email)
		}
		if u.Username != "" && existing.Username == u.Username {
			return nil, fmt.Errorf("%w: username %q", ErrConflict, u.Username)
		}
	}
	cp := *u
	cp.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	r.byID[cp.ID] = &cp
	r.order = append(r.order, cp.ID)
	ret := cp
	return &ret, nil
}

func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	cp.Password = ""
	return &cp, nil
}

func (r *MemoryRepository) Find(ctx context.Context, q *ListQuery) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.User{}
	for _, id := range r.order {
		u := r.byID[id]
		if matchesFilter(u, q.Filter) {
			cp := *u
			cp.Password = ""
			out = append(out, cp)
		}
	}
	applySort(out, q.Sort)
	if q.Offset != nil {
		if int(*q.Offset) >= len(out) {
			return []models.User{}, nil
		}
		out = out[*q.Offset:]
	}
	if q.Limit != nil && int(*q.Limit) < len(out) {
		out = out[:*q.Limit]
	}
	return out, nil
}

func (r *MemoryRepository) UpdateByID(ctx context.Context, id primitive.ObjectID, patch bson.M) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return false, nil
	}
	for k, v := range patch {
		switch k {
		case "username":
			u.Username, _ = v.(string)
		case "name":
			u.Name, _ = v.(string)
		case "email":
			u.Email, _ = v.(string)
		case "isProfilePublic":
			u.IsProfilePublic, _ = v.(bool)
		case "isAdmin":
			u.IsAdmin, _ = v.(bool)
		case "password":
			u.Password, _ = v.(string)
		}
	}
	return true, nil
}

func matchesFilter(u *models.User, filter bson.M) bool {
	for k, v := range filter {
		switch k {
		case "username":
			if u.Username != v {
				return false
			}
		case "name":
			if u.Name != v {
				return false
			}
		case "email":
			if u.Email != v {
				return false
			}
		case "isAdmin":
			if b, _ := v.(bool); u.IsAdmin != b {
				return false
			}
		case "isProfilePublic":
			if b, _ := v.(bool); u.IsProfilePublic != b {
				return false
			}
		default:
			// unknown field: nothing stored under it, no match
			return false
		}
	}
	return true
}

func applySort(list []models.User, key string) {
	if key == "" {
		return
	}
	field := strings.TrimPrefix(key, "-")
	desc := strings.HasPrefix(key, "-")
	sort.SliceStable(list, func(i, j int) bool {
		var less bool
		switch field {
		case "username":
			less = list[i].Username < list[j].Username
		case "email":
			less = list[i].Email < list[j].Email
		case "createdAt":
			less = list[i].CreatedAt.Before(list[j].CreatedAt)
		default:
			return false
		}
		if desc {
			return !less
		}
		return less
	})
}
