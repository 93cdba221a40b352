// Package ident names addressable model features.
//
// A TypeIdentifier pairs the stable logical type name of a domain type with
// the runtime class name that currently implements it. A FeatureIdentifier
// addresses a type, one of its properties or collections, or one of its
// actions together with the action's parameter types.
//
// Logical identity strings (LogicalIdentityString) are stable across
// renames of the implementing Go type and are safe to persist or send over
// the wire. Full identity strings are derived from class names and are only
// meant for logs and diagnostics.
package ident
