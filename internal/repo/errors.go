package repo

import (
	"github.com/divinestore/storefront-backend/pkg/db"
	pkgerrors "github.com/divinestore/storefront-backend/pkg/errors"
)

// MapError converts a persistence failure into the domain envelope. Missing
// rows become NOT_FOUND; anything else means the backend could not answer.
func MapError(err error, notFoundMessage, op string) error {
	if err == nil {
		return nil
	}
	if db.IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, notFoundMessage)
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeBackendUnavailable, err, op)
}
