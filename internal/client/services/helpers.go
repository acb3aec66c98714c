package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/evorun/internal/client/session"
	"github.com/dmitrijs2005/evorun/internal/client/store"
	"github.com/dmitrijs2005/evorun/internal/common"
)

// ErrNotLoggedIn is returned by operations that need a session.
var ErrNotLoggedIn = errors.New("not logged in")

func requireSession(sess *session.Session) error {
	if sess == nil || sess.Email == "" {
		return ErrNotLoggedIn
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, common.ErrorNotFound)
}

func isLocalStoreError(err error) bool {
	return errors.Is(err, store.ErrLocalStore)
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrorValidation, fmt.Sprintf(format, args...))
}
