package render

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mcdrc/odea/internal/bag"
	"github.com/mcdrc/odea/internal/fileutil"
	"github.com/mcdrc/odea/internal/metadata"
)

// Site carries page chrome shared by every rendered page.
type Site struct {
	Archive    string
	ArchiveURL string
	License    string
}

// FileRow is one line of an item page's file listing.
type FileRow struct {
	Filename string
	Label    string
	Size     string
	MTime    string
}

// NewFileRow builds a listing row from a file record.
func NewFileRow(rec metadata.FileRecord) FileRow {
	return FileRow{
		Filename: rec.Filename,
		Label:    rec.FormatTag,
		Size:     fileutil.ByteSize(rec.Size),
		MTime:    rec.MTime,
	}
}

// Card is one item summary on the collection index.
type Card struct {
	Identifier  string
	Title       string
	Subtitle    string
	Description string
	ThumbSrc    string
}

// NewCard summarizes an item for the index. thumbSrc may be empty.
func NewCard(item metadata.Item, thumbSrc string) Card {
	title := metadata.Deref(item.Title)
	if title == "" {
		title = item.Identifier
	}
	return Card{
		Identifier:  item.Identifier,
		Title:       title,
		Subtitle:    metadata.Deref(item.DCMIType),
		Description: Truncate(metadata.Deref(item.Description), 200),
		ThumbSrc:    thumbSrc,
	}
}

const pageCSS = `q::before { content: none; } q::after { content: none; } q{font-style: italic}`

const layoutTemplate = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1, shrink-to-fit=no">
<link rel="stylesheet" href="bootstrap.min.css">
<style>{{.CSS}}</style>
<title>{{.Title}} - {{.Site.Archive}}</title>
</head>
<body>
<nav class="navbar navbar-expand-lg navbar-dark bg-primary">
<div class="container"><a class="navbar-brand" href="{{.Site.ArchiveURL}}">{{.Site.Archive}}</a></div>
</nav>
<div class="container py-4">
{{block "breadcrumbs" .}}{{end}}
<h1><small class="text-muted text-uppercase">{{.Kind}} /</small> {{.Title}}</h1>
{{block "body" .}}{{end}}
</div>
<footer class="footer mt-5 p-3">
<div class="container">
<p class="text-muted">rev. {{.Rev}}</p>
<p class="text-muted">{{.LicenseHTML}}</p>
</div>
</footer>
</body>
</html>
`

const itemTemplate = `{{define "breadcrumbs"}}
<nav aria-label="breadcrumb">
<ol class="breadcrumb bg-light px-0 py-0">
<li class="breadcrumb-item"><a href="../">Archive</a></li>
<li class="breadcrumb-item"><a href="{{.CollectionID}}.html">Collection</a></li>
<li class="breadcrumb-item active" aria-current="page">Item</li>
</ol>
</nav>
{{end}}
{{define "body"}}
{{if .EmbedURL}}<div class="ratio ratio-16x9"><iframe src="{{.EmbedURL}}" scrolling="no" allowfullscreen></iframe></div>
{{else if .PreviewSrc}}<p><img src="{{.PreviewSrc}}" class="img-thumbnail"></p>
{{end}}<table class="table">
{{range .Rows}}<tr><th>{{.Term}}</th><td>{{range .Values}}<p>{{.}}</p>{{end}}</td></tr>
{{end}}</table>
<h2>Files</h2>
<table class="table">
<tr><th>file</th><th>size</th><th>date modified</th></tr>
{{range .Files}}<tr><td><a href="../{{.Filename}}">{{.Label}}</a></td><td>{{.Size}}</td><td>{{.MTime}}</td></tr>
{{end}}</table>
{{end}}`

const indexTemplate = `{{define "breadcrumbs"}}
<nav aria-label="breadcrumb">
<ol class="breadcrumb bg-light px-0 py-0">
<li class="breadcrumb-item"><a href="../">Archive</a></li>
<li class="breadcrumb-item active" aria-current="page">Collection</li>
</ol>
</nav>
{{end}}
{{define "body"}}
{{if .PreviewSrc}}<p><img src="{{.PreviewSrc}}" class="img-thumbnail"></p>
{{end}}<table class="table">
{{range .Rows}}<tr><th>{{.Term}}</th><td>{{range .Values}}<p>{{.}}</p>{{end}}</td></tr>
{{end}}</table>
<div class="row row-cols-1 row-cols-md-2 row-cols-lg-3 g-3">
{{range .Cards}}<div class="col"><div class="card h-100">
{{if .ThumbSrc}}<img src="{{.ThumbSrc}}" class="card-img-top">
{{end}}<div class="card-body">
<h5 class="card-title">{{.Title}}</h5>
{{if .Subtitle}}<h6 class="card-subtitle mb-2 text-muted">{{.Subtitle}}</h6>
{{end}}<p class="card-text">{{.Description}}</p>
<p><small><a href="{{.Identifier}}.html" class="stretched-link">{{.Identifier}}</a></small></p>
</div>
</div></div>
{{end}}</div>
{{end}}`

var (
	itemPage  = template.Must(template.Must(template.New("page").Parse(layoutTemplate)).Parse(itemTemplate))
	indexPage = template.Must(template.Must(template.New("page").Parse(layoutTemplate)).Parse(indexTemplate))
)

type pageData struct {
	Site        Site
	CSS         template.CSS
	Kind        string
	Title       string
	Rev         string
	LicenseHTML template.HTML

	// item page
	CollectionID string
	EmbedURL     string
	PreviewSrc   string
	Rows         []MetaRow
	Files        []FileRow

	// index page
	Cards []Card
}

func basePage(site Site, kind, title string) pageData {
	return pageData{
		Site:        site,
		CSS:         template.CSS(pageCSS),
		Kind:        kind,
		Title:       title,
		Rev:         time.Now().Format("2006-01-02"),
		LicenseHTML: urlize(site.License),
	}
}

// WriteItemPage renders html/<item-uuid>.html and returns its path.
// previewSrc and the embed URL are alternatives; the embed wins.
func WriteItemPage(root string, site Site, item metadata.Item, collectionID, previewSrc string, files []FileRow) (string, error) {
	title := metadata.Deref(item.Title)
	if title == "" {
		title = item.Identifier
	}
	data := basePage(site, "item", title)
	data.CollectionID = collectionID
	data.EmbedURL = metadata.Deref(item.RemoteEmbedURL)
	data.PreviewSrc = previewSrc
	data.Rows = itemMetaRows(item)
	data.Files = files

	path := filepath.Join(root, bag.HTMLDir, item.Identifier+".html")
	return path, writePage(path, itemPage, data)
}

// WriteIndexPage renders html/<collection-uuid>.html and mirrors it to
// html/index.html. The uuid-named path is returned.
func WriteIndexPage(root string, site Site, coll metadata.Collection, cards []Card) (string, error) {
	title := metadata.Deref(coll.Title)
	if title == "" {
		title = site.Archive
	}
	data := basePage(site, "collection", title)
	data.PreviewSrc = metadata.Deref(coll.Preview)
	data.Rows = collectionMetaRows(coll)
	data.Cards = cards

	path := filepath.Join(root, bag.HTMLDir, coll.Identifier+".html")
	if err := writePage(path, indexPage, data); err != nil {
		return "", err
	}
	alias := filepath.Join(root, bag.HTMLDir, "index.html")
	return path, writePage(alias, indexPage, data)
}

func writePage(path string, tmpl *template.Template, data pageData) error {
	var out strings.Builder
	if err := tmpl.Execute(&out, data); err != nil {
		return fmt.Errorf("render %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create html directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(out.String()), 0o644); err != nil {
		return fmt.Errorf("write page: %w", err)
	}
	return nil
}
