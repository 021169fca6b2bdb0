package api

import (
	"errors"

	"github.com/okian/rankboard/internal/adapters/repository"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// errIsNotFound reports whether err represents a repository-layer
// not-found condition.
func errIsNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
