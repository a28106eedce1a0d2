package srest

import (
	"fmt"

	"github.com/pkg/errors"
)

//IsNotFound returns whether the error cause is that something was not found
func IsNotFound(err error) bool {
	nfe, ok := errors.Cause(err).(NotFound)
	return ok && nfe.IsNotFound()
}

//NotFound is the interface that wraps the IsNotFound method
type NotFound interface {
	IsNotFound() bool
}

//IsNotAuthorized returns whether the error cause is that there was an attempt to perform a not authorized action
func IsNotAuthorized(err error) bool {
	nae, ok := errors.Cause(err).(NotAuthorized)
	return ok && nae.IsNotAuthorized()
}

//NotAuthorized is the interface that wraps the IsNotAuthorized nethod
type NotAuthorized interface {
	IsNotAuthorized() bool
}

//IsBadRequest returns whether the error cause is that the provided inputs are incorrect
func IsBadRequest(err error) bool {
	nae, ok := errors.Cause(err).(BadRequest)
	return ok && nae.IsBadRequest()
}

//BadRequest is the interface that wraps the IsBadRequest method
type BadRequest interface {
	IsBadRequest() bool
}

//IsParseError returns whether the error cause is a statement rejected by the
//query grammar before reaching the engine
func IsParseError(err error) bool {
	pe, ok := errors.Cause(err).(ParseFailure)
	return ok && pe.IsParseError()
}

//ParseFailure is the interface that wraps the IsParseError method
type ParseFailure interface {
	IsParseError() bool
}

type badRequest string

func (err badRequest) IsBadRequest() bool {
	return true
}
func (err badRequest) Error() string {
	return string(err)
}

type notAuthorizedError struct {
	Target string
}

func (err notAuthorizedError) Error() string {
	return fmt.Sprintf("Not authorized to access '%s'", err.Target)
}

func (err notAuthorizedError) IsNotAuthorized() bool {
	return true
}
