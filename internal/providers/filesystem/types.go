package filesystem

import "errors"

// Error codes
const (
	CodeReadError      = "DIRECTORY_READ_ERROR"
	CodeInvalidPattern = "INVALID_PATTERN"
)

const (
	// MaxDepth caps recursive listings.
	MaxDepth = 8
	// MaxItems caps the number of entries in one listing.
	MaxItems = 10000
)

var (
	ErrNotExist       = errors.New("directory does not exist")
	ErrNotDirectory   = errors.New("path is not a directory")
	ErrInvalidPattern = errors.New("invalid pattern")
)

// ItemType distinguishes directories from everything else.
type ItemType string

const (
	ItemDirectory ItemType = "directory"
	ItemFile      ItemType = "file"
)

// Item is one directory entry
type Item struct {
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	Type     ItemType `json:"type"`
	MimeType string   `json:"mimeType,omitempty"`
}

// Options control a listing
type Options struct {
	// Pattern is a doublestar glob matched against the slash separated path
	// relative to the listed directory. Empty matches everything.
	Pattern string
	// Mime sniffs the content type of files.
	Mime bool
	// Depth is how many levels to descend; values below 1 mean 1.
	Depth int
}

// Listing is the result of List
type Listing struct {
	Path      string `json:"path"`
	Items     []Item `json:"items"`
	Truncated bool   `json:"truncated,omitempty"`
}

// Error is a listing failure with a stable code
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func readError(msg string, err error) *Error {
	return &Error{Code: CodeReadError, Message: msg, Err: err}
}
