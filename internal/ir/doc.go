// Package ir provides the constrained value representation shared by the
// memento engine, the metamodel and the entity store.
//
// A value type's semantics decompose an instance into an IRObject; that
// decomposition is what a VALUE memento carries, what the store persists for
// entities and what the memento codec writes on the wire. ir imports nothing
// internal, so every other package may depend on it.
//
// Constraints:
//   - Integers stay exact as IRInt; fractional numbers are IRFloat and
//     encode in the ECMAScript shortest form. NaN and infinities are errors.
//   - null (a nil slice, map or pointer) is an ordinary value.
//   - Canonical serialization is RFC 8785 (sorted UTF-16 keys, no HTML
//     escaping); it is the only encoding used for hashing. Strings are kept
//     byte for byte, so text in different normalization forms stays distinct.
//   - All JSON keys written by this module use snake_case.
package ir
