package render

import (
	"html"
	"html/template"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mcdrc/odea/internal/metadata"
)

var (
	hashtagRE = regexp.MustCompile(`#[\pL\pN_-]+`)
	bracketRE = regexp.MustCompile(`<((?:https?://|mailto:)[^>\s]+)>`)
)

// Truncate shortens a description for index cards, cutting on the last
// sentence boundary under max. Without a boundary it cuts hard and
// appends an ellipsis. A negative max disables truncation.
func Truncate(s string, max int) string {
	if max < 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	head := s[:cut]
	if idx := strings.LastIndex(head, ". "); idx >= 0 {
		return head[:idx+1]
	}
	return head + " ..."
}

// urlize escapes text and converts URLs to anchors. A field that is a
// single bare URL becomes one link; otherwise URLs written in angle
// brackets are linked in place.
func urlize(text string) template.HTML {
	if strings.HasPrefix(text, "http") && !strings.Contains(text, " ") {
		escaped := html.EscapeString(text)
		return template.HTML(`<a href="` + escaped + `">` + escaped + `</a>`)
	}

	var out strings.Builder
	last := 0
	for _, loc := range bracketRE.FindAllStringSubmatchIndex(text, -1) {
		out.WriteString(html.EscapeString(text[last:loc[0]]))
		url := html.EscapeString(text[loc[2]:loc[3]])
		out.WriteString(`<a href="` + url + `">` + url + `</a>`)
		last = loc[1]
	}
	out.WriteString(html.EscapeString(text[last:]))
	return template.HTML(out.String())
}

// formatNote wraps hashtags in badge spans before the usual URL
// treatment.
func formatNote(note string) template.HTML {
	linked := string(urlize(note))
	badged := hashtagRE.ReplaceAllString(linked, `<span class="badge bg-secondary">$0</span>`)
	return template.HTML(badged)
}

// MetaRow is one table row of the metadata listing.
type MetaRow struct {
	Term   string
	Values []template.HTML
}

// metaRows lays out non-empty elements in presentation order. The title
// is skipped since pages print it as the heading.
func metaRows(values map[string][]string, notes []string) []MetaRow {
	rows := make([]MetaRow, 0, len(metadata.Terms))
	for _, term := range metadata.Terms {
		if term == "title" {
			continue
		}
		var cells []template.HTML
		if term == "note" {
			for _, note := range notes {
				if note != "" {
					cells = append(cells, formatNote(note))
				}
			}
		} else {
			for _, v := range values[term] {
				if v != "" {
					cells = append(cells, urlize(v))
				}
			}
		}
		if len(cells) == 0 {
			continue
		}
		rows = append(rows, MetaRow{Term: term, Values: cells})
	}
	return rows
}

func itemMetaRows(item metadata.Item) []MetaRow {
	return metaRows(map[string][]string{
		"dcmi_type":   {metadata.Deref(item.DCMIType)},
		"identifier":  {item.Identifier},
		"creator":     item.Creator,
		"subject":     item.Subject,
		"contributor": item.Contributor,
		"coverage":    {metadata.Deref(item.Coverage)},
		"date":        {metadata.Deref(item.Date)},
		"description": {metadata.Deref(item.Description)},
		"language":    {metadata.Deref(item.Language)},
		"publisher":   {metadata.Deref(item.Publisher)},
		"relation":    {metadata.Deref(item.Relation)},
		"rights":      {metadata.Deref(item.Rights)},
		"source":      {metadata.Deref(item.Source)},
	}, item.Note)
}

func collectionMetaRows(coll metadata.Collection) []MetaRow {
	return metaRows(map[string][]string{
		"dcmi_type":   {metadata.Deref(coll.DCMIType)},
		"identifier":  {coll.Identifier},
		"creator":     coll.Creator,
		"subject":     coll.Subject,
		"contributor": coll.Contributor,
		"coverage":    {metadata.Deref(coll.Coverage)},
		"date":        {metadata.Deref(coll.Date)},
		"description": {metadata.Deref(coll.Description)},
		"language":    {metadata.Deref(coll.Language)},
		"publisher":   {metadata.Deref(coll.Publisher)},
		"relation":    {metadata.Deref(coll.Relation)},
		"rights":      {metadata.Deref(coll.Rights)},
		"source":      {metadata.Deref(coll.Source)},
	}, coll.Note)
}
