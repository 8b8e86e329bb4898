// Package metadata owns the three JSON metadata tiers of a collection:
// bag-info.json at the root, item_metadata/<uuid>.json per item, and
// file_metadata/<uuid>.<tag>.json per physical file.
//
// Item and collection records are curated content and follow an additive
// merge policy: absent fields are filled, existing values are never
// overwritten. File records are derived facts and are rewritten in full on
// every touch. Records are explicit structs with optional fields so the merge
// logic is checked at compile time while the serialized form stays plain JSON
// keyed by unqualified Dublin Core element names.
package metadata
