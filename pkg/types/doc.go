// Package types defines the walkthrough, progress, and analytics entities,
// the store configuration, and standard error values for the Walkabout
// storage system.
package types
