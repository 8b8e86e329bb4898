// Package bag manages the on-disk BagIt skeleton of a collection.
//
// It creates and validates the fixed layout (bagit.txt, bag-info.json, the
// data/deriv payload tree, and the metadata/html directories), locates the
// collection root from any member path, and maintains the sha-256 payload
// manifest. Initialization is idempotent: existing files are never truncated.
package bag
