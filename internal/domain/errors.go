package domain

import "errors"

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrSessionExists   = errors.New("session already exists")
	ErrProjectExists   = errors.New("project already exists")
)
