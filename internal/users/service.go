package users

import (
	"context"
	"fmt"

	"github.com/profilekit/profilekit/internal/models"
	"github.com/profilekit/profilekit/internal/password"
	"github.com/profilekit/profilekit/internal/tokens"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// patchableFields is the allow-list for profile updates. isAdmin and
// password are deliberately absent: the admin flag is not a
// self-service field and password changes would bypass hashing.
var patchableFields = map[string]struct{}{
	"username":        {},
	"name":            {},
	"email":           {},
	"isProfilePublic": {},
}

// Service implements registration, login and the role-scoped profile
// operations over a Repository. All collaborators are injected.
type Service struct {
	repo   Repository
	tokens *tokens.Service
}

func NewService(repo Repository, ts *tokens.Service) *Service {
	return &Service{repo: repo, tokens: ts}
}

// RegisterInput carries the registration fields. Email and password
// are required; name and username pass through.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// Register hashes the password and creates the user. New profiles are
// public by default. The returned record never carries the hash.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Email == "" || in.Password == "" {
		return nil, ErrMissingField
	}
	hash, err := password.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		Username:        in.Username,
		Name:            in.Name,
		Email:           in.Email,
		Password:        hash,
		IsProfilePublic: true,
	}
	created, err := s.repo.Create(ctx, u)
	if err != nil {
		return nil, err
	}
	created.Password = ""
	return created, nil
}

// Login verifies the credentials and issues a 14-day bearer token. A
// missing user and a wrong password are distinct internally even
// though the HTTP layer words both as a generic failure.
func (s *Service) Login(ctx context.Context, email, plain string) (string, error) {
	if email == "" || plain == "" {
		return "", ErrMissingField
	}
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", ErrNotFound
	}
	if !password.Verify(plain, u.Password) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(u, tokens.LoginTTL)
}

// List runs the scoped listing. Non-admin requesters have
// isProfilePublic=true forced into the filter, overriding any
// client-supplied value for that field.
func (s *Service) List(ctx context.Context, q *ListQuery, claims *tokens.Claims) ([]models.User, error) {
	if q == nil {
		q = &ListQuery{Filter: bson.M{}}
	}
	if q.Filter == nil {
		q.Filter = bson.M{}
	}
	if claims == nil || !claims.IsAdmin {
		q.Filter["isProfilePublic"] = true
	}
	return s.repo.Find(ctx, q)
}

// Get looks up a single user. The id format is checked before the
// store is consulted.
func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	u, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// Update applies an allow-listed partial update with no upsert. A
// patch that leaves nothing applicable behaves like a miss.
func (s *Service) Update(ctx context.Context, id string, patch map[string]interface{}) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	allowed := bson.M{}
	for k, v := range patch {
		if _, ok := patchableFields[k]; ok {
			allowed[k] = v
		}
	}
	if len(allowed) == 0 {
		return ErrNotFound
	}
	matched, err := s.repo.UpdateByID(ctx, oid, allowed)
	if err != nil {
		return err
	}
	if !matched {
		return ErrNotFound
	}
	return nil
}
