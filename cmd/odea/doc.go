// Command odea is the command-line interface to the archival toolkit.
// It initializes collections, imports and tags source files, generates
// derivatives, and renders the static HTML catalog.
package main
