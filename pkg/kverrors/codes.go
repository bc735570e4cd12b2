package kverrors

// ErrorCode represents a standardized way to categorize different types of errors.
type ErrorCode string

const (
	// ErrorCodeIO represents failures in input/output operations: opening,
	// reading, writing, seeking, or removing segment files and the store
	// directory.
	ErrorCodeIO ErrorCode = "IO_ERROR"

	// ErrorCodeInvalidInput represents caller-supplied configuration that
	// doesn't meet the store's requirements (e.g. an empty data directory).
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrorCodeInternal represents unexpected failures that don't fit into
	// any other category.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"

	// ErrorCodeSerde indicates a command record could not be encoded or
	// decoded.
	ErrorCodeSerde ErrorCode = "SERDE_ERROR"

	// ErrorCodeKeyNotFound indicates remove was called on a key absent from
	// the index.
	ErrorCodeKeyNotFound ErrorCode = "KEY_NOT_FOUND"

	// ErrorCodeUnexpectedCommandType indicates the index resolved to a
	// record that did not decode as Set — a store corruption signal.
	ErrorCodeUnexpectedCommandType ErrorCode = "UNEXPECTED_COMMAND_TYPE"
)

// Storage-specific error codes extend the base taxonomy to handle failure
// modes that occur specifically in segment file management.
const (
	// ErrorCodePermissionDenied indicates insufficient permissions to access
	// a resource. Distinct from a generic IO error because it has a specific
	// resolution path: adjust permissions or run with elevated privileges.
	ErrorCodePermissionDenied ErrorCode = "PERMISSION_DENIED"

	// ErrorCodeDiskFull indicates the storage device has run out of space.
	ErrorCodeDiskFull ErrorCode = "DISK_FULL"

	// ErrorCodeFilesystemReadonly indicates the filesystem is mounted
	// read-only.
	ErrorCodeFilesystemReadonly ErrorCode = "FILESYSTEM_READONLY"
)
