package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidUsername is returned when a trimmed username is outside 2..20 characters.
	ErrInvalidUsername = errors.New("username must be between 2 and 20 characters")
	// ErrNoProgress is returned when an operation needs an active session and there is none.
	ErrNoProgress = errors.New("no active quiz progress")
	// ErrProgressExists is returned by Initialize while a run is active; only a reset clears it.
	ErrProgressExists = errors.New("quiz progress already exists")
	// ErrUnknownLevel indicates a level identifier outside the fixed set.
	ErrUnknownLevel = errors.New("unknown level")
	// ErrQuestionOutOfRange indicates a question index outside the level's questions.
	ErrQuestionOutOfRange = errors.New("question index out of range")
	// ErrLevelLocked is returned when acting on a level whose predecessor is below the unlock threshold.
	ErrLevelLocked = errors.New("level is locked")
	// ErrInvalidQuestionBank indicates question content that breaks the bank's shape.
	ErrInvalidQuestionBank = errors.New("invalid question bank")
	// ErrStorage matches every *StorageError.
	ErrStorage = errors.New("progress storage failure")
)

// StorageError wraps a failed read or write against the progress backend.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }
