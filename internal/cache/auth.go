// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ManuGH/locflow/internal/domain/workflow/ports"
)

// User is the signed-in user object persisted next to the token.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Auth keeps the bearer token and user object in a KeyValue.
type Auth struct {
	kv ports.KeyValue
}

func NewAuth(kv ports.KeyValue) *Auth {
	return &Auth{kv: kv}
}

// Login stores the token and user together.
func (a *Auth) Login(ctx context.Context, token string, user User) error {
	if token == "" {
		return errors.New("empty token")
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := a.kv.Set(ctx, ports.KeyAuthToken, token); err != nil {
		return err
	}
	return a.kv.Set(ctx, ports.KeyUser, string(data))
}

// Logout removes both keys.
func (a *Auth) Logout(ctx context.Context) error {
	return errors.Join(
		a.kv.Delete(ctx, ports.KeyAuthToken),
		a.kv.Delete(ctx, ports.KeyUser),
	)
}

// Token returns the stored token, or "" when there is none or the store
// fails. It matches backend.TokenSource.
func (a *Auth) Token(ctx context.Context) string {
	tok, err := a.kv.Get(ctx, ports.KeyAuthToken)
	if err != nil {
		return ""
	}
	return tok
}

// User returns the stored user or ports.ErrKeyNotFound.
func (a *Auth) User(ctx context.Context) (User, error) {
	raw, err := a.kv.Get(ctx, ports.KeyUser)
	if err != nil {
		return User{}, err
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return User{}, fmt.Errorf("decode user: %w", err)
	}
	return u, nil
}
