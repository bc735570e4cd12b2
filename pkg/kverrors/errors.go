// Package kverrors provides structured, classifiable errors for the store.
//
// Architecture and Design Philosophy:
//
// The error system is built around a hierarchical structure that starts with a
// foundational baseError and extends into domain-specific error types. This
// design maintains consistency across all error types while allowing
// specialized context for different domains, enables rich error chaining that
// preserves the complete failure context, and supports programmatic error
// handling through standardized error codes.
//
// Two domains get dedicated context-carrying error types: ValidationError for
// caller-supplied configuration problems, and StorageError for segment file
// I/O problems, which needs to know which file and byte offset were involved.
// On top of these, two package-level sentinel values — ErrKeyNotFound and
// ErrUnexpectedCommandType — let callers use errors.Is for conditions that
// never need extra context.
package kverrors

import (
	stdErrors "errors"
	"os"
	"syscall"
)

// IsValidationError checks if the given error is a ValidationError or contains one in its error chain.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return stdErrors.As(err, &ve)
}

// IsStorageError determines if an error is related to storage operations, such as file I/O,
// disk space issues, or segment file corruption. Storage errors often require different
// handling strategies than other error types because they may indicate hardware issues,
// capacity problems, or data integrity concerns that need immediate attention.
//
// Example usage:
//
//	if kverrors.IsStorageError(err) {
//	    storageErr, _ := kverrors.AsStorageError(err)
//	    switch storageErr.Code() {
//	    case ErrorCodeDiskFull:
//	        triggerCleanupProcedures()
//	    case ErrorCodePermissionDenied:
//	        alertAdministrator(storageErr.Path())
//	    }
//	}
func IsStorageError(err error) bool {
	var se *StorageError
	return stdErrors.As(err, &se)
}

// AsValidationError safely extracts a ValidationError from an error chain, providing access
// to validation-specific context such as which field failed, what rule was violated, and
// what values were provided versus expected.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if stdErrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// AsStorageError extracts StorageError context from an error chain, providing access to
// storage-specific information such as segment IDs, file offsets, file names, and paths.
//
// Example usage:
//
//	if storageErr, ok := kverrors.AsStorageError(err); ok {
//	    errorContext := map[string]interface{}{
//	        "segmentId": storageErr.SegmentID(),
//	        "offset": storageErr.Offset(),
//	        "fileName": storageErr.FileName(),
//	        "path": storageErr.Path(),
//	        "errorCode": storageErr.Code(),
//	    }
//	    handleStorageFailure(errorContext)
//	}
func AsStorageError(err error) (*StorageError, bool) {
	var se *StorageError
	if stdErrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from any error that supports it, or returns
// ErrorCodeInternal for errors that don't have specific codes.
func GetErrorCode(err error) ErrorCode {
	if ve, ok := AsValidationError(err); ok {
		return ve.Code()
	}

	if se, ok := AsStorageError(err); ok {
		return se.Code()
	}

	if stdErrors.Is(err, ErrKeyNotFound) {
		return ErrorCodeKeyNotFound
	}

	if stdErrors.Is(err, ErrUnexpectedCommandType) {
		return ErrorCodeUnexpectedCommandType
	}

	return ErrorCodeInternal
}

// GetErrorDetails extracts structured details from any error that supports them,
// returning an empty map for errors without details.
func GetErrorDetails(err error) map[string]any {
	if ve, ok := AsValidationError(err); ok {
		if details := ve.Details(); details != nil {
			return details
		}
	}

	if se, ok := AsStorageError(err); ok {
		if details := se.Details(); details != nil {
			return details
		}
	}

	return make(map[string]any)
}

// ClassifyDirectoryCreationError analyzes directory creation failures and returns
// appropriate error codes based on the underlying system error. This helps
// clients understand exactly what went wrong and how they might fix it.
func ClassifyDirectoryCreationError(err error, path string) error {
	if os.IsPermission(err) {
		return NewStorageError(
			err, ErrorCodePermissionDenied,
			"insufficient permissions to create store directory",
		).WithPath(path).
			WithDetail("operation", "directory_creation").
			WithDetail("required_permission", "write")
	}

	if pathErr, ok := err.(*os.PathError); ok {
		if errno, ok := pathErr.Err.(syscall.Errno); ok {
			switch errno {
			case syscall.ENOSPC:
				return NewStorageError(
					err, ErrorCodeDiskFull,
					"insufficient disk space to create store directory",
				).WithPath(path).WithDetail("operation", "directory_creation")
			case syscall.EROFS:
				return NewStorageError(
					err, ErrorCodeFilesystemReadonly,
					"cannot create directory on read-only filesystem",
				).WithPath(path).WithDetail("operation", "directory_creation")
			}
		}
	}

	return NewStorageError(
		err, ErrorCodeIO, "failed to create store directory",
	).WithPath(path).WithDetail("operation", "directory_creation")
}

// ClassifyFileOpenError analyzes file opening failures and returns appropriate
// error codes based on the underlying system error. This provides much more
// specific information than a generic I/O error.
func ClassifyFileOpenError(err error, filePath, fileName string) error {
	if os.IsPermission(err) {
		return NewStorageError(
			err, ErrorCodePermissionDenied,
			"insufficient permissions to open segment file",
		).WithPath(filePath).
			WithFileName(fileName).
			WithDetail("operation", "file_open").
			WithDetail("required_permission", "read_write")
	}

	if pathErr, ok := err.(*os.PathError); ok {
		if errno, ok := pathErr.Err.(syscall.Errno); ok {
			switch errno {
			case syscall.ENOSPC:
				return NewStorageError(
					err, ErrorCodeDiskFull,
					"insufficient disk space to create segment file",
				).WithPath(filePath).WithFileName(fileName).WithDetail("operation", "file_open")
			case syscall.EROFS:
				return NewStorageError(
					err, ErrorCodeFilesystemReadonly,
					"cannot create file on read-only filesystem",
				).WithPath(filePath).WithFileName(fileName).WithDetail("operation", "file_open")
			}
		}
	}

	return NewStorageError(err, ErrorCodeIO, "failed to open segment file").
		WithPath(filePath).
		WithFileName(fileName).
		WithDetail("operation", "file_open").
		WithDetail("flags", []string{"O_CREATE", "O_RDWR", "O_APPEND"})
}

// ClassifySyncError analyzes flush/sync failures and returns appropriate error
// codes. Sync failures can indicate various underlying issues from disk space
// problems to filesystem corruption.
func ClassifySyncError(err error, fileName, filePath string, offset int64) error {
	if pathErr, ok := err.(*os.PathError); ok {
		if errno, ok := pathErr.Err.(syscall.Errno); ok {
			switch errno {
			case syscall.ENOSPC:
				return NewStorageError(
					err, ErrorCodeDiskFull,
					"cannot sync file: insufficient disk space",
				).WithFileName(fileName).WithPath(filePath).WithOffset(offset).
					WithDetail("operation", "file_sync")
			case syscall.EROFS:
				return NewStorageError(
					err, ErrorCodeFilesystemReadonly,
					"cannot sync file: filesystem is read-only",
				).WithFileName(fileName).WithPath(filePath).WithOffset(offset).
					WithDetail("operation", "file_sync")
			case syscall.EIO:
				return NewStorageError(
					err, ErrorCodeIO,
					"I/O error during file sync",
				).WithFileName(fileName).WithPath(filePath).WithOffset(offset).
					WithDetail("operation", "file_sync").WithDetail("severity", "high")
			}
		}
	}

	return NewStorageError(
		err, ErrorCodeIO, "failed to sync segment file to disk",
	).WithFileName(fileName).WithPath(filePath).WithOffset(offset).
		WithDetail("operation", "file_sync")
}
