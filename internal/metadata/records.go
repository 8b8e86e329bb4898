package metadata

import (
	"path"
	"strings"
)

// Terms lists the Dublin Core element names in presentation order, used by
// the HTML renderer when laying out metadata tables.
var Terms = []string{
	"dcmi_type", "title", "identifier", "creator", "subject", "contributor",
	"coverage", "date", "description", "language", "publisher", "relation",
	"rights", "source", "note",
}

// Item is the curated metadata record for one logical archival resource.
// Scalar Dublin Core elements are pointers and multi-valued elements are
// ordered slices; nil means the field has never been filled and serializes
// as an explicit null so field workers see the full editable schema.
type Item struct {
	Identifier     string   `json:"identifier"`
	DCMIType       *string  `json:"dcmi_type"`
	Title          *string  `json:"title"`
	Creator        []string `json:"creator"`
	Subject        []string `json:"subject"`
	Contributor    []string `json:"contributor"`
	Coverage       *string  `json:"coverage"`
	Date           *string  `json:"date"`
	Description    *string  `json:"description"`
	Language       *string  `json:"language"`
	Publisher      *string  `json:"publisher"`
	Relation       *string  `json:"relation"`
	Rights         *string  `json:"rights"`
	Source         *string  `json:"source"`
	Note           []string `json:"note"`
	RemoteEmbedURL *string  `json:"remote_embed_url,omitempty"`
}

// Collection is the collection-level record persisted as bag-info.json.
type Collection struct {
	Archive     *string  `json:"archive"`
	ArchiveURL  *string  `json:"archive_url"`
	Identifier  string   `json:"identifier"`
	DCMIType    *string  `json:"dcmi_type"`
	Title       *string  `json:"title"`
	Creator     []string `json:"creator"`
	Subject     []string `json:"subject"`
	Contributor []string `json:"contributor"`
	Coverage    *string  `json:"coverage"`
	Date        *string  `json:"date"`
	Description *string  `json:"description"`
	Language    *string  `json:"language"`
	Publisher   *string  `json:"publisher"`
	Relation    *string  `json:"relation"`
	Rights      *string  `json:"rights"`
	Source      *string  `json:"source"`
	Note        []string `json:"note"`
	Preview     *string  `json:"preview,omitempty"`
}

// FileRecord describes one physical file instance of an item. It is derived
// entirely from the file on disk and is rewritten in full whenever the file
// is touched.
type FileRecord struct {
	Identifier   string `json:"identifier"`
	Filename     string `json:"filename"`
	Basename     string `json:"basename"`
	FormatTag    string `json:"format"`
	Ext          string `json:"ext"`
	Checksum     string `json:"checksum"`
	Size         int64  `json:"size"`
	MTime        string `json:"mtime"`
	OriginalName string `json:"original_name,omitempty"`
	Thumb        string `json:"thumb,omitempty"`
	Preview      string `json:"preview,omitempty"`
}

// String returns a pointer to s, for seeding optional record fields.
func String(s string) *string { return &s }

// Deref returns the value of p or "" when nil.
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// DefaultTitle derives a display title from a file basename: the final path
// element with underscores replaced by spaces.
func DefaultTitle(basename string) string {
	base := path.Base(strings.ReplaceAll(basename, "\\", "/"))
	return strings.ReplaceAll(base, "_", " ")
}
