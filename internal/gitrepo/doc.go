// Package gitrepo interrogates Git working trees.
//
// RepositoryInspector asks git for the top-level directory, the abbreviated
// HEAD reference, and the metadata directory. The HEAD helpers read the same
// information straight from the metadata files when git itself is unavailable.
package gitrepo
