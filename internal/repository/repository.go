package repository

import "errors"

// ErrNotFound is returned by all repositories when the requested row does
// not exist. Postgres implementations translate pgx.ErrNoRows into it so
// services behave identically over every adapter.
var ErrNotFound = errors.New("not found")
