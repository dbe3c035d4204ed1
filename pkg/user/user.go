package user

import (
	"errors"
	"time"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserDataInvalid = errors.New("invalid user data")

// User is the local counterpart of an account held by the auth service.
// Uid is the auth service's subject id.
type User struct {
	Id          int
	Uid         string
	Email       string
	DisplayName string
	CreatedAt   time.Time
}
