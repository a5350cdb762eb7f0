package router

import (
	"errors"
	"fmt"
	"time"
)

// UserInputError marks errors caused by malformed user input
type UserInputError struct {
	Err error
}

// NewUserInputError returns user input error with given message
func NewUserInputError(msg string) error {
	return &UserInputError{Err: errors.New(msg)}
}

func (e *UserInputError) Error() string {
	return e.Err.Error()
}

func (e *UserInputError) Unwrap() error {
	return e.Err
}

// IsUserInputError returns true if any error in the chain is UserInputError
func IsUserInputError(err error) bool {
	var uie *UserInputError

	return errors.As(err, &uie)
}

// CooldownError is returned when route is invoked too often
type CooldownError struct {
	Retry time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("command is on cooldown, retry in %.1fs", e.Retry.Seconds())
}

// CheckError marks failed command precondition, such as wrong channel kind or missing permission
type CheckError struct {
	Err error
}

// NewCheckError returns check error with given message
func NewCheckError(msg string) error {
	return &CheckError{Err: errors.New(msg)}
}

func (e *CheckError) Error() string {
	return e.Err.Error()
}

func (e *CheckError) Unwrap() error {
	return e.Err
}

// IsPublic returns true if error message is meant to be shown to the invoking user
func IsPublic(err error) bool {
	var ce *CheckError

	return IsUserInputError(err) || errors.As(err, &ce)
}
