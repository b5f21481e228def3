// Package dependencies supplies OS-backed defaults for collaborators that
// commands accept as optional injections.
package dependencies
