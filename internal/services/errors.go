// Package services defines the business logic for song recognition,
// accounts, and search history. This file centralizes common service-level
// error values so that they can be consistently returned by service methods
// and checked by callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

var (
	// ErrSongNotRecognized indicates the fingerprint service produced no
	// match for the uploaded clip. This is an expected outcome, mapped to
	// 404 upstream, and never writes history.
	ErrSongNotRecognized = errors.New("song not recognized")

	// ErrEmptyAudio is returned when the uploaded audio payload is missing
	// or zero bytes long.
	ErrEmptyAudio = errors.New("audio payload is empty")

	// ErrEmailTaken is returned when registration hits the unique-email
	// constraint.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned on login when the email is unknown
	// or the password does not match. The two cases are deliberately
	// indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrHistoryNotFound indicates that the requested history record does
	// not exist.
	ErrHistoryNotFound = errors.New("history record not found")
)
