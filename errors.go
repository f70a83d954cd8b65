package domtimeline

import "errors"

var (
	// ErrUnknownKind is returned when an Event carries an unrecognized Kind
	ErrUnknownKind = errors.New("unknown event kind")

	// ErrJournalRecordMalformed indicates a stored journal record could not
	// be decoded
	ErrJournalRecordMalformed = errors.New("journal record malformed")

	// ErrInvalidTableName indicates a Postgres journal table name that is
	// not a plain identifier
	ErrInvalidTableName = errors.New("invalid journal table name")
)
