package service

import "errors"

// Sentinel errors returned by services. The HTTP layer maps each one to a
// status code and a client-facing message.
var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")

	ErrUserNotFound    = errors.New("user not found")
	ErrTaskNotFound    = errors.New("task not found")
	ErrCommentNotFound = errors.New("comment not found")

	ErrNotTaskParticipant = errors.New("not authorized to update this task")
	ErrNotTaskCreator     = errors.New("not authorized to delete this task")
	ErrNotCommentAuthor   = errors.New("not authorized to modify this comment")

	ErrInvalidRole     = errors.New("invalid role")
	ErrInvalidAssignee = errors.New("assigned user does not exist")
)
