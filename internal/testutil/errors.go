// Package testutil provides testing utilities for relcut.
//
// This package contains mock errors and git fixtures used across test files.
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for simulating collaborator failures in tests.
var (
	// ErrMockNetwork stands in for a transport failure.
	ErrMockNetwork = errors.New("network error")

	// ErrMockUploadFailed stands in for a storage or registry upload failure.
	ErrMockUploadFailed = errors.New("upload failed")

	// ErrMockRepository stands in for an unreadable git repository.
	ErrMockRepository = errors.New("repository error")
)
