package entity

import "errors"

var (
	ErrNoMatch        = errors.New("no match for locator")
	ErrAmbiguousMatch = errors.New("too many matches for locator")
	ErrLocatorTooDeep = errors.New("locator nesting too deep")
	ErrInvalidLocator = errors.New("invalid locator")
	ErrNoContainer    = errors.New("no container found")
	ErrUnknownHandle  = errors.New("unknown element handle")
)
