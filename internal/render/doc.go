// Package render produces the static HTML pages stored under a
// collection's html/ directory: one page per published item and a
// card-based index for the collection itself.
package render
