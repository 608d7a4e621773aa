package errcode

import (
	"errors"

	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError

	// Logging errors
	CreateLogFileError

	// Database errors
	DBConnectionError
	DBNotConnectedError
	DBTableCheckError
	DBTableExistsCheckError
	DBQueryTablesError
	DBScanTableError
	DBDropTableError
	DBEmptyDatabaseError

	// Schema errors
	SchemaGORMConnectionError
	SchemaExtensionError
	SchemaCreateError
	SchemaMigrateError
	SchemaConstraintError
	SchemaSeedError

	// Submission and lookup errors
	ValidationError
	NotFoundError
	AmbiguousReferenceError
	IntegrityError
	StoreError

	// Input file errors
	SubmitFileError
	TaxaFileError

	// Command line errors
	UsageError

	// Taxa maintenance errors
	ReparseError
)

// Is reports whether err, or any error it wraps, is a *gn.Error with
// the given code.
func Is(err error, code gn.ErrorCode) bool {
	var gnErr *gn.Error
	if !errors.As(err, &gnErr) {
		return false
	}
	return gnErr.Code == code
}
