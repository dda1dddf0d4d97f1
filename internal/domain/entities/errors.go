package entities

import "errors"

// ErrNotificationNotFound is returned by the notification repository when a
// mark-read targets a row the recipient does not own; usecases map it to a
// not-found response without importing gorm.
var ErrNotificationNotFound = errors.New("notification not found")
