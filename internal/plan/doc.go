// Package plan decides which derivative format tags a source file owes.
//
// A fixed table maps normalized extension groups ("media classes") to ordered
// derivative targets; configuration can add or replace classes without code
// changes. Planning is pure and idempotent: existing tags are subtracted, and
// unknown extensions yield an empty plan rather than an error, since
// unsupported types are deliberately skipped.
package plan
