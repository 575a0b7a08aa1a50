// Package models defines server-side data models persisted in the database.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a file record.
//
// The only transition owned by this service is
// PENDING_UPLOAD → QUEUED, applied when the storage layer confirms the
// object was written. Downstream processing states belong to other systems.
type Status string

const (
	// StatusPendingUpload is the initial state: a write capability was
	// issued but the object has not been confirmed in storage yet.
	StatusPendingUpload Status = "PENDING_UPLOAD"
	// StatusQueued means the object is confirmed present in storage.
	StatusQueued Status = "QUEUED"
)

// Valid reports whether s is a known lifecycle state.
func (s Status) Valid() bool {
	return s == StatusPendingUpload || s == StatusQueued
}

// Predecessor returns the state a record must currently be in for a
// transition into s. ok is false when s is not a valid transition target.
func (s Status) Predecessor() (Status, bool) {
	if s == StatusQueued {
		return StatusPendingUpload, true
	}
	return "", false
}

// UploadKeyPrefix is the fixed object-storage prefix for uploaded files.
// The storage layer's "object created" notifications are filtered to it.
const UploadKeyPrefix = "uploads/"

// StorageKeyForFile derives the object-storage key for a file id.
// The key is a pure function of the id and is never mutated independently.
func StorageKeyForFile(fileID string) string {
	return UploadKeyPrefix + fileID
}

// FileIDFromStorageKey extracts the file id from an object-storage key.
// Keys outside UploadKeyPrefix, or with nested path segments, are rejected.
func FileIDFromStorageKey(key string) (string, error) {
	id, ok := strings.CutPrefix(key, UploadKeyPrefix)
	if !ok {
		return "", fmt.Errorf("key %q outside prefix %q", key, UploadKeyPrefix)
	}
	if id == "" || strings.Contains(id, "/") {
		return "", fmt.Errorf("malformed storage key %q", key)
	}
	return id, nil
}

// FileRecord describes one uploaded/uploading file and its lifecycle state.
type FileRecord struct {
	// ID is the opaque unique identifier, assigned at upload-intent creation.
	ID string
	// OwnerUserID identifies the requesting user; used for authorization
	// and for the by-owner secondary index.
	OwnerUserID string
	// StorageKey is the object-storage key the file is written under.
	StorageKey string
	// Status is the current lifecycle state.
	Status Status

	// ContentType and SizeHint are client-supplied metadata, advisory
	// until the upload is confirmed. SizeHint is nil when not provided.
	ContentType string
	SizeHint    *int64

	// CreatedAt is set once at creation; UpdatedAt on every transition.
	CreatedAt time.Time
	UpdatedAt time.Time
}
