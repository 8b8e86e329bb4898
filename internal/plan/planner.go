package plan

import (
	"sort"
	"strings"
)

// Target names one derivative a source file owes: the format tag embedded in
// the derivative's filename and the extension of the produced file.
type Target struct {
	Tag string
	Ext string
}

// Rule groups source extensions into a media class with an ordered target
// sequence.
type Rule struct {
	Name       string
	Extensions []string
	Targets    []Target
}

// DefaultRules is the built-in media-class table.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:       "raster image",
			Extensions: []string{"bmp", "gif", "jpg", "jpeg", "png", "psd", "tif", "tiff"},
			Targets:    []Target{{"df-med-img", "png"}, {"df-lg-img", "png"}},
		},
		{
			Name:       "web archive",
			Extensions: []string{"url"},
			Targets:    []Target{{"pf-webarc", "webarc"}},
		},
		{
			Name:       "plain text or Markdown",
			Extensions: []string{"md", "txt"},
			Targets:    []Target{{"df-pandoc-html", "html"}},
		},
		{
			Name:       "reStructuredText",
			Extensions: []string{"rst"},
			Targets:    []Target{{"df-docutils-html", "html"}},
		},
		{
			Name:       "audio file",
			Extensions: []string{"mp3", "wav", "wma", "ogg"},
			Targets:    []Target{{"pf-wav", "wav"}, {"df-mp3", "mp3"}},
		},
		{
			Name:       "office document",
			Extensions: []string{"odt", "odp", "doc", "docx", "ppt", "pptx"},
			Targets:    []Target{{"df-pdf-doc", "pdf"}},
		},
		{
			Name:       "vector image",
			Extensions: []string{"eps", "svg"},
			Targets:    []Target{{"pf-vector", "svg"}, {"df-pdf-vector", "pdf"}},
		},
		{
			Name:       "video",
			Extensions: []string{"avi", "flv", "mov", "mpeg", "mp4", "webm", "ogv"},
			Targets:    []Target{{"df-360p-vp9-400k", "webm"}, {"df-video-still", "jpg"}, {"df-h264", "mp4"}},
		},
	}
}

// Planner resolves extensions to ordered derivative targets.
type Planner struct {
	byExt map[string][]Target
}

// New builds a planner from the default table plus any extra rules. An extra
// rule with the name of a built-in class replaces it wholesale; new names
// extend the table.
func New(extra ...Rule) *Planner {
	rules := DefaultRules()
	for _, r := range extra {
		replaced := false
		for i := range rules {
			if strings.EqualFold(rules[i].Name, r.Name) {
				rules[i] = r
				replaced = true
				break
			}
		}
		if !replaced {
			rules = append(rules, r)
		}
	}

	byExt := make(map[string][]Target)
	for _, r := range rules {
		for _, ext := range r.Extensions {
			byExt[normalizeExt(ext)] = r.Targets
		}
	}
	return &Planner{byExt: byExt}
}

// Plan returns the ordered derivative targets still owed for a source file
// with the given extension, subtracting format tags that already exist. An
// unknown extension produces an empty plan.
func (p *Planner) Plan(ext string, existing []string) []Target {
	targets, ok := p.byExt[normalizeExt(ext)]
	if !ok {
		return nil
	}

	have := make(map[string]struct{}, len(existing))
	for _, tag := range existing {
		have[tag] = struct{}{}
	}

	missing := make([]Target, 0, len(targets))
	for _, t := range targets {
		if _, done := have[t.Tag]; !done {
			missing = append(missing, t)
		}
	}
	return missing
}

// Supports reports whether the planner knows the extension.
func (p *Planner) Supports(ext string) bool {
	_, ok := p.byExt[normalizeExt(ext)]
	return ok
}

// Extensions lists every extension the planner recognizes, sorted.
func (p *Planner) Extensions() []string {
	exts := make([]string, 0, len(p.byExt))
	for ext := range p.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
