package ident

import "errors"

var (
	// ErrInvalidArgument is returned when an identifier is built from an
	// empty member name or empty type names.
	ErrInvalidArgument = errors.New("ident: invalid argument")

	// ErrEmptyName is returned when a logical type name is empty.
	ErrEmptyName = errors.New("ident: empty logical type name")

	// ErrConflictingRegistration indicates an attempt to bind a type to a
	// logical name different from the one it already has.
	ErrConflictingRegistration = errors.New("ident: conflicting type registration")

	// ErrLogicalNameTaken indicates that two distinct types claim the same
	// logical type name.
	ErrLogicalNameTaken = errors.New("ident: logical type name already taken")
)
