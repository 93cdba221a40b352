// Package metamodel describes domain types to the memento engine.
//
// A Specification binds a TypeIdentifier to a Kind (value, entity, view
// model, serializable), to value Semantics that decompose instances into
// ir.IRObject and back, and to the type's declared features. The Loader
// owns all specifications of a process and resolves them by Go type, by
// logical type name or from a pojo.
//
// Types can be defined in Go (Loader.Define) or declared in a CUE catalog
// (LoadCatalog, Loader.ApplyCatalog). Catalog declarations that are not
// bound to a Go type become Record types: generic field bags that still
// carry a logical type name and, for entities, a key.
package metamodel
