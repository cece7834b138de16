// Package types contains the core types and interfaces shared across the
// soloist library.
//
// The root soloist package re-exports these via type aliases, so most users
// never import this package directly. Internal packages depend on types
// instead of the root package to avoid import cycles.
package types
