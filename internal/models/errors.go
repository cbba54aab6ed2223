package models

import "errors"

var (
	// ErrUnauthorized is returned for bad or missing credentials, before any
	// retrieval work happens.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSourceParse marks a single unreadable document or row. Ingestion
	// skips it and continues.
	ErrSourceParse = errors.New("source parse failure")

	// ErrSearch wraps faults of the vector store query.
	ErrSearch = errors.New("vector search failure")

	// ErrGeneration wraps faults of the language model call.
	ErrGeneration = errors.New("generation failure")

	ErrInvalidPolicy   = errors.New("invalid chunking policy")
	ErrInvalidQuestion = errors.New("question is empty")
)

// ErrUserNotFound is returned by user stores for an unknown login.
var ErrUserNotFound = errors.New("user not found")
