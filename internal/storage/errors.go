package storage

import "errors"

// ErrUserNotFound is returned when a role lookup finds no record for the user.
var ErrUserNotFound = errors.New("user not found")
