// Package layout describes the Spec-Kit directory structure.
//
// Directories derives every tool and documentation path from a repository
// root. Variant distinguishes the legacy layout from the migrated one, and a
// single lookup table maps each DirectoryKind to its location per variant.
package layout
