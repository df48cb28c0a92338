package persistence

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/khoahotran/portfolio-hub/pkg/apperror"
)

const (
	pgCodeInvalidTextRepresentation = "22P02"
	pgCodeStringDataRightTruncation = "22001"
	pgCodeNotNullViolation          = "23502"
	pgCodeCheckViolation            = "23514"
)

// mapPgError turns a driver error into the gateway's error taxonomy. resource and id are
// only used for not-found reporting.
func mapPgError(err error, details, resource, id string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCodeInvalidTextRepresentation:
			// a malformed uuid cannot name an existing row
			return apperror.NewNotFound(resource, id)
		case pgCodeStringDataRightTruncation, pgCodeNotNullViolation, pgCodeCheckViolation:
			return apperror.NewInvalidInput(pgErr.Message, err)
		}
	}
	return apperror.NewTransport(details, err)
}
