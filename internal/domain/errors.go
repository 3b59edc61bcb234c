package domain

import "errors"

// ErrIndexQuery signals a failed mandatory query against the search index.
var ErrIndexQuery = errors.New("search index query failed")
