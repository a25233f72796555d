package models

import "time"

// Task is a to-do item owned by exactly one user.
type Task struct {
	ID          int64
	UserID      int64
	Description string
	Completed   bool
	// AttachmentKey is the object-storage key of the task's attachment,
	// empty when there is none.
	AttachmentKey string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasAttachment reports whether an attachment key has been allocated.
func (t *Task) HasAttachment() bool {
	return t.AttachmentKey != ""
}

// TaskUpdate is a partial update; nil fields are left unchanged.
type TaskUpdate struct {
	Description *string
	Completed   *bool
}

// Empty reports whether the update changes nothing.
func (u TaskUpdate) Empty() bool {
	return u.Description == nil && u.Completed == nil
}
