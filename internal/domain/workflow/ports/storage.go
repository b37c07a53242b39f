// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package ports

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by KeyValue.Get for absent keys.
var ErrKeyNotFound = errors.New("key not found")

// Well-known keys. Nothing else is persisted.
const (
	KeyAuthToken = "auth_token"
	KeyUser      = "user"
)

// KeyValue is the only storage the workflow depends on.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
