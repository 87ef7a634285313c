package spsc

import "errors"

var (
	// ErrReaderAlreadyExists is returned when a Reader is attached to a
	// Channel that has already had one.
	ErrReaderAlreadyExists = errors.New("spsc: cannot create reader for queue: one already exists")

	// ErrWriterAlreadyExists is returned when a Writer is attached to a
	// Channel that has already had one.
	ErrWriterAlreadyExists = errors.New("spsc: cannot create writer for queue: one already exists")
)
