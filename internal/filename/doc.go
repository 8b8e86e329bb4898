// Package filename implements the tagged filename grammar used across the
// collection: <basename>[.<format-tag>][.<uuid>].<extension>.
//
// Parse and Build are pure inverses over this grammar. The format-tag
// vocabulary is SRC for source files plus the open df-* (distribution) and
// pf-* (preservation) families; the suffix after a family prefix is free-form.
// Slug produces the sanitized basename applied to source files before they
// are renamed on disk.
package filename
