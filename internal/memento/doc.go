// Package memento snapshots managed objects into immutable, transportable
// mementos and reconstructs them later, possibly in another process.
//
// There are three memento variants:
//   - Empty: an absent reference of a known logical type
//   - Scalar: one object captured by a recreate strategy
//   - Collection: an ordered list of Empty and Scalar elements
//
// A Scalar carries exactly one strategy payload, chosen when the memento is
// created in the order VALUE, LOOKUP, SERIALIZABLE:
//
//	VALUE         the decomposition produced by the type's value semantics
//	LOOKUP        the bookmark of an entity with persistent identity
//	SERIALIZABLE  opaque bytes from MarshalBinary or encoding/gob
//
// Equality is delegated to the payload. Two mementos of the same object
// taken with different strategies are never equal.
//
// Reconstruction dispatches through Visitor, so every variant is handled
// by construction. A LOOKUP miss inside a collection fails the whole
// collection; the error names the element index.
package memento
