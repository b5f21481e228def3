// Package filesystem abstracts the few filesystem queries speckit-paths needs
// so resolution can be exercised against temporary trees in tests.
package filesystem
