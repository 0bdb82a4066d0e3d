package database

import "errors"

var (
	ErrEmptyID       = errors.New("user id must be set")
	ErrEmptyUsername = errors.New("username must be set")
	ErrUserNotFound  = errors.New("user not found")
)
