package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrUnauthorized        = errors.New("authentication credentials were not provided")
	ErrForbidden           = errors.New("you do not have permission to perform this action")
	ErrNotFound            = errors.New("not found")
	ErrDuplicateMembership = errors.New("already exists")
	ErrMissingMembership   = errors.New("does not exist")
	ErrSelfSubscription    = errors.New("you cannot subscribe to yourself")
	ErrInvalidCredentials  = errors.New("unable to log in with provided credentials")
)

// UserError carries a message meant for the client on top of one of the sentinel kinds.
type UserError struct {
	Kind    error
	Message string
}

func (e *UserError) Error() string { return e.Message }

func (e *UserError) Unwrap() error { return e.Kind }

func userError(kind error, format string, args ...interface{}) error {
	return &UserError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ValidationError collects messages keyed by payload field.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + strings.Join(e.Fields[k], " ")
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func fieldError(field, msg string) error {
	v := &ValidationError{}
	v.Add(field, msg)
	return v
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return userError(ErrNotFound, "%s not found.", what)
	}
	return errors.Wrap(err, "find "+strings.ToLower(what))
}
