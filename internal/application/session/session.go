package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
)

// ErrNoSession is returned when no user is recorded in the session store
var ErrNoSession = errors.New("no user in session")

// Context gives read access to the current user and lets login/logout
// record or clear it
type Context struct {
	store port.SessionStore
}

// NewContext creates a session context over a key-value store
func NewContext(store port.SessionStore) *Context {
	return &Context{store: store}
}

// CurrentUser decodes the user entry
func (c *Context) CurrentUser(ctx context.Context) (*entity.User, error) {
	raw, ok, err := c.store.GetItem(ctx, entity.SessionUserKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if !ok || raw == "" {
		return nil, ErrNoSession
	}

	var user entity.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("failed to decode session user: %w", err)
	}
	if user.Email == "" {
		return nil, ErrNoSession
	}
	return &user, nil
}

// Email returns the current user's email
func (c *Context) Email(ctx context.Context) (string, error) {
	user, err := c.CurrentUser(ctx)
	if err != nil {
		return "", err
	}
	return user.Email, nil
}

// Login records user as the current identity
func (c *Context) Login(ctx context.Context, user entity.User) error {
	if user.Email == "" {
		return fmt.Errorf("email is required")
	}
	if user.Type == "" {
		user.Type = entity.UserTypeEmployee
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode session user: %w", err)
	}
	return c.store.SetItem(ctx, entity.SessionUserKey, string(raw))
}

// Logout clears the current identity
func (c *Context) Logout(ctx context.Context) error {
	return c.store.RemoveItem(ctx, entity.SessionUserKey)
}
