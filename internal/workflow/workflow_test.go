package workflow_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"github.com/mcdrc/odea/internal/bag"
	"github.com/mcdrc/odea/internal/filename"
	"github.com/mcdrc/odea/internal/logging"
	"github.com/mcdrc/odea/internal/metadata"
	"github.com/mcdrc/odea/internal/services"
	"github.com/mcdrc/odea/internal/services/convert"
	"github.com/mcdrc/odea/internal/services/thumbs"
	"github.com/mcdrc/odea/internal/testsupport"
	"github.com/mcdrc/odea/internal/workflow"
)

// stubConverter writes a marker file for every requested derivative and
// can be told to fail specific format tags.
type stubConverter struct {
	calls []convert.Request
	fail  map[string]error
}

func (s *stubConverter) Convert(_ context.Context, req convert.Request) error {
	s.calls = append(s.calls, req)
	if err := s.fail[req.Tag]; err != nil {
		return err
	}
	return os.WriteFile(req.Target, []byte("derived:"+req.Tag), 0o644)
}

// stubThumbnailer writes both outputs without shelling out.
type stubThumbnailer struct {
	calls int
}

func (s *stubThumbnailer) Generate(_ context.Context, req thumbs.Request) (thumbs.Result, error) {
	s.calls++
	names := thumbs.Names(req.Key)
	if err := os.MkdirAll(req.Dir, 0o755); err != nil {
		return thumbs.Result{}, err
	}
	for _, name := range []string{names.Thumb, names.Preview} {
		if err := os.WriteFile(filepath.Join(req.Dir, name), []byte("img"), 0o644); err != nil {
			return thumbs.Result{}, err
		}
	}
	return names, nil
}

func newWorkflow(t *testing.T) (*workflow.Workflow, *stubConverter, *stubThumbnailer) {
	t.Helper()
	conv := &stubConverter{fail: map[string]error{}}
	th := &stubThumbnailer{}
	w := workflow.New(logging.NewNop(),
		workflow.WithConverter(conv),
		workflow.WithThumbnailer(th),
		workflow.WithSite(workflow.Site{Archive: "Test Archive", License: "https://example.org/license"}),
	)
	return w, conv, th
}

func TestNewCollectionTree(t *testing.T) {
	w, _, _ := newWorkflow(t)
	dir := t.TempDir()
	if err := w.NewCollection(dir, "Test Archive", "My collection"); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	want := []string{"bag-info.json", "bagit.txt", "data", "file_metadata", "html", "item_metadata"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("root entries = %v, want %v", names, want)
	}
	if _, err := os.Stat(filepath.Join(dir, "data", "deriv")); err != nil {
		t.Fatalf("data/deriv missing: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "bag-info.json"))
	if err != nil {
		t.Fatal(err)
	}
	var coll metadata.Collection
	if err := json.Unmarshal(raw, &coll); err != nil {
		t.Fatal(err)
	}
	if !filename.IsUUID(coll.Identifier) {
		t.Fatalf("collection identifier = %q", coll.Identifier)
	}
	if metadata.Deref(coll.Title) != "My collection" || metadata.Deref(coll.Archive) != "Test Archive" {
		t.Fatalf("collection record = %+v", coll)
	}
}

func TestNewCollectionRequiresDir(t *testing.T) {
	w, _, _ := newWorkflow(t)
	if err := w.NewCollection("", "", ""); !errors.Is(err, workflow.ErrMissingArgument) {
		t.Fatalf("err = %v, want ErrMissingArgument", err)
	}
}

func TestNewCollectionRejectsMissingDir(t *testing.T) {
	w, _, _ := newWorkflow(t)
	dir := filepath.Join(t.TempDir(), "typo", "path")
	if err := w.NewCollection(dir, "", ""); !errors.Is(err, bag.ErrInvalidTarget) {
		t.Fatalf("err = %v, want ErrInvalidTarget", err)
	}
	if _, err := os.Stat(dir); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("missing target directory was created anyway")
	}
}

func TestUpdateTagsRenamesAndRecords(t *testing.T) {
	w, _, th := newWorkflow(t)
	root := testsupport.NewCollection(t)
	src := testsupport.WriteSource(t, root, "MyVideo.mp4", "video-bytes")

	final, err := w.Update(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}

	base := filepath.Base(final)
	pattern := regexp.MustCompile(`^MyVideo\.SRC\.[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.mp4$`)
	if !pattern.MatchString(base) {
		t.Fatalf("final name = %q", base)
	}
	if _, err := os.Stat(final); err != nil {
		t.Fatalf("renamed file missing: %v", err)
	}
	if _, err := os.Stat(src); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("original untagged file still present")
	}

	parts, err := filename.Parse(base)
	if err != nil {
		t.Fatal(err)
	}
	store := metadata.NewStore(root)
	item, err := store.LoadItem(parts.UUID)
	if err != nil {
		t.Fatal(err)
	}
	if metadata.Deref(item.Title) != "MyVideo" {
		t.Fatalf("title = %q", metadata.Deref(item.Title))
	}

	rec, err := store.LoadFile(parts.UUID, filename.TagSource)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Size == 0 || len(rec.Checksum) != 64 {
		t.Fatalf("file record = %+v", rec)
	}
	if rec.Filename != "data/"+base {
		t.Fatalf("record filename = %q", rec.Filename)
	}

	manifest, err := os.ReadFile(filepath.Join(root, bag.ManifestFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(manifest), rec.Checksum+"  data/"+base) {
		t.Fatalf("manifest missing entry: %s", manifest)
	}

	// mp4 has no direct thumbnail source and no derivatives yet
	if th.calls != 0 {
		t.Fatalf("thumbnailer invoked %d times for raw video", th.calls)
	}
}

func TestUpdateHandlesDottedBasenames(t *testing.T) {
	w, _, _ := newWorkflow(t)
	root := testsupport.NewCollection(t)
	src := testsupport.WriteSource(t, root, "2024.01.15.interview.mp4", "video")

	final, err := w.Update(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	base := filepath.Base(final)
	if !strings.HasPrefix(base, "2024.01.15.interview.SRC.") || !strings.HasSuffix(base, ".mp4") {
		t.Fatalf("final name = %q", base)
	}

	parts, err := filename.Parse(base)
	if err != nil {
		t.Fatal(err)
	}
	if parts.Basename != "2024.01.15.interview" || parts.FormatTag != filename.TagSource {
		t.Fatalf("parsed parts = %+v", parts)
	}
	item, err := metadata.NewStore(root).LoadItem(parts.UUID)
	if err != nil {
		t.Fatal(err)
	}
	if metadata.Deref(item.Title) != "2024.01.15.interview" {
		t.Fatalf("title = %q", metadata.Deref(item.Title))
	}
}

func TestUpdateIsIdempotent(t *testing.T) {
	w, _, _ := newWorkflow(t)
	root := testsupport.NewCollection(t)
	src := testsupport.WriteSource(t, root, "notes.txt", "field notes")

	first, err := w.Update(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	firstItem, err := os.ReadFile(itemSidecar(t, root, first))
	if err != nil {
		t.Fatal(err)
	}

	second, err := w.Update(context.Background(), first)
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Fatalf("second update renamed %q to %q", first, second)
	}
	secondItem, err := os.ReadFile(itemSidecar(t, root, first))
	if err != nil {
		t.Fatal(err)
	}
	if string(firstItem) != string(secondItem) {
		t.Fatalf("item sidecar changed on second run:\n%s\n%s", firstItem, secondItem)
	}
}

func TestUpdatePreservesCuratedTitle(t *testing.T) {
	w, _, _ := newWorkflow(t)
	root := testsupport.NewCollection(t)
	src := testsupport.WriteSource(t, root, "interview.wav", "audio")

	final, err := w.Update(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	parts, _ := filename.Parse(filepath.Base(final))

	store := metadata.NewStore(root)
	item, err := store.LoadItem(parts.UUID)
	if err != nil {
		t.Fatal(err)
	}
	item.Title = metadata.String("Curated title")
	item.Subject = nil
	raw, _ := json.MarshalIndent(item, "", "  ")
	if err := os.WriteFile(store.ItemPath(parts.UUID), raw, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := w.Update(context.Background(), final); err != nil {
		t.Fatal(err)
	}
	item, err = store.LoadItem(parts.UUID)
	if err != nil {
		t.Fatal(err)
	}
	if metadata.Deref(item.Title) != "Curated title" {
		t.Fatalf("curated title overwritten: %q", metadata.Deref(item.Title))
	}
}

func TestUpdateMultiFileMemberKeepsName(t *testing.T) {
	w, _, _ := newWorkflow(t)
	root := testsupport.NewCollection(t)
	const dirID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	member := testsupport.WriteSource(t, root, filepath.Join("clips."+dirID+".dir", "clip01.mp4"), "clip")

	final, err := w.Update(context.Background(), member)
	if err != nil {
		t.Fatal(err)
	}
	if final != member {
		t.Fatalf("member file renamed: %q -> %q", member, final)
	}

	store := metadata.NewStore(root)
	rec, err := store.LoadFile(dirID, filename.TagSource)
	if err != nil {
		t.Fatalf("record under directory uuid: %v", err)
	}
	if rec.Filename != "data/clips."+dirID+".dir/clip01.mp4" {
		t.Fatalf("record filename = %q", rec.Filename)
	}
}

func TestMultiFileMemberDerivesAndPublishes(t *testing.T) {
	w, conv, _ := newWorkflow(t)
	root := testsupport.NewCollection(t)
	const dirID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	member := testsupport.WriteSource(t, root, filepath.Join("clips."+dirID+".dir", "clip01.tif"), "tiff")

	if _, err := w.Update(context.Background(), member); err != nil {
		t.Fatal(err)
	}
	if err := w.Derive(context.Background(), member); err != nil {
		t.Fatal(err)
	}
	if len(conv.calls) == 0 {
		t.Fatal("no conversions ran for member file")
	}
	store := metadata.NewStore(root)
	if _, err := store.LoadFile(dirID, "df-med-img"); err != nil {
		t.Fatalf("derivative record under directory uuid: %v", err)
	}

	page, err := w.Publish(context.Background(), member)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(page) != dirID+".html" {
		t.Fatalf("page = %s", page)
	}

	sidecar, err := w.EditTarget(member)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(sidecar) != dirID+".json" {
		t.Fatalf("sidecar = %s", sidecar)
	}
}

func TestUpdateThumbnailsImages(t *testing.T) {
	w, _, th := newWorkflow(t)
	root := testsupport.NewCollection(t)
	src := testsupport.WriteSource(t, root, "photo.jpg", "jpeg-bytes")

	final, err := w.Update(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	if th.calls != 1 {
		t.Fatalf("thumbnailer calls = %d", th.calls)
	}
	parts, _ := filename.Parse(filepath.Base(final))
	rec, err := metadata.NewStore(root).LoadFile(parts.UUID, filename.TagSource)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(rec.Thumb, "thumb/") || !strings.HasPrefix(rec.Preview, "thumb/") {
		t.Fatalf("thumb paths = %q / %q", rec.Thumb, rec.Preview)
	}
	if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(rec.Thumb))); err != nil {
		t.Fatalf("thumb file missing: %v", err)
	}
}

func TestUpdateRequiresFilename(t *testing.T) {
	w, _, _ := newWorkflow(t)
	if _, err := w.Update(context.Background(), ""); !errors.Is(err, workflow.ErrMissingArgument) {
		t.Fatalf("err = %v, want ErrMissingArgument", err)
	}
}

func TestUpdateOutsideCollection(t *testing.T) {
	w, _, _ := newWorkflow(t)
	stray := filepath.Join(t.TempDir(), "stray.txt")
	if err := os.WriteFile(stray, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Update(context.Background(), stray); !errors.Is(err, bag.ErrNotInCollection) {
		t.Fatalf("err = %v, want ErrNotInCollection", err)
	}
}

func TestDerivePlansAndRecords(t *testing.T) {
	w, conv, _ := newWorkflow(t)
	root := testsupport.NewCollection(t)
	src := testsupport.WriteSource(t, root, "scan.tif", "tiff-bytes")

	final, err := w.Update(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Derive(context.Background(), final); err != nil {
		t.Fatal(err)
	}

	var tags []string
	for _, call := range conv.calls {
		tags = append(tags, call.Tag)
	}
	if strings.Join(tags, ",") != "df-med-img,df-lg-img" {
		t.Fatalf("conversion order = %v", tags)
	}

	parts, _ := filename.Parse(filepath.Base(final))
	store := metadata.NewStore(root)
	for _, tag := range []string{"df-med-img", "df-lg-img"} {
		rec, err := store.LoadFile(parts.UUID, tag)
		if err != nil {
			t.Fatalf("missing record for %s: %v", tag, err)
		}
		if !strings.HasPrefix(rec.Filename, "data/deriv/scan."+tag+".") {
			t.Fatalf("derivative path = %q", rec.Filename)
		}
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(rec.Filename))); err != nil {
			t.Fatalf("derivative file missing: %v", err)
		}
	}

	// Second run owes nothing.
	conv.calls = nil
	if err := w.Derive(context.Background(), final); err != nil {
		t.Fatal(err)
	}
	if len(conv.calls) != 0 {
		t.Fatalf("second derive converted again: %v", conv.calls)
	}
}

func TestDeriveIsolatesFailures(t *testing.T) {
	w, conv, _ := newWorkflow(t)
	conv.fail["df-med-img"] = services.Wrap(services.ErrConversionFailed, "convert", "run", "boom", nil)
	root := testsupport.NewCollection(t)
	src := testsupport.WriteSource(t, root, "scan.png", "png-bytes")

	final, err := w.Update(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	err = w.Derive(context.Background(), final)
	if !errors.Is(err, services.ErrConversionFailed) {
		t.Fatalf("err = %v, want wrapped ErrConversionFailed", err)
	}

	// The failing target must not block the next one.
	parts, _ := filename.Parse(filepath.Base(final))
	store := metadata.NewStore(root)
	if _, err := store.LoadFile(parts.UUID, "df-lg-img"); err != nil {
		t.Fatalf("surviving derivative not recorded: %v", err)
	}
	if _, err := store.LoadFile(parts.UUID, "df-med-img"); !errors.Is(err, metadata.ErrNotFound) {
		t.Fatalf("failed derivative recorded anyway: %v", err)
	}
}

func TestDeriveRejectsUntagged(t *testing.T) {
	w, _, _ := newWorkflow(t)
	root := testsupport.NewCollection(t)
	src := testsupport.WriteSource(t, root, "raw.png", "png")
	if err := w.Derive(context.Background(), src); !errors.Is(err, workflow.ErrNotTagged) {
		t.Fatalf("err = %v, want ErrNotTagged", err)
	}
}

func TestPublishWritesItemPage(t *testing.T) {
	w, _, _ := newWorkflow(t)
	root := testsupport.NewCollection(t)
	src := testsupport.WriteSource(t, root, "photo.jpg", "jpeg")

	final, err := w.Update(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	page, err := w.Publish(context.Background(), final)
	if err != nil {
		t.Fatal(err)
	}

	parts, _ := filename.Parse(filepath.Base(final))
	if filepath.Base(page) != parts.UUID+".html" {
		t.Fatalf("page = %s", page)
	}
	body, err := os.ReadFile(page)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"photo", "SRC", "Test Archive"} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("page missing %q", want)
		}
	}
}

func TestPublishRejectsUnknownItem(t *testing.T) {
	w, _, _ := newWorkflow(t)
	root := testsupport.NewCollection(t)
	src := testsupport.WriteSource(t, root, "a.SRC.11111111-2222-4333-8444-555555555555.txt", "x")
	if _, err := w.Publish(context.Background(), src); !errors.Is(err, metadata.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestIndexListsPublishedItemsOnly(t *testing.T) {
	w, _, _ := newWorkflow(t)
	root := testsupport.NewCollection(t)

	published := testsupport.WriteSource(t, root, "alpha.txt", "one")
	unpublished := testsupport.WriteSource(t, root, "beta.txt", "two")

	pubFinal, err := w.Update(context.Background(), published)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Update(context.Background(), unpublished); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Publish(context.Background(), pubFinal); err != nil {
		t.Fatal(err)
	}

	page, err := w.Index(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	body, err := os.ReadFile(page)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "alpha") {
		t.Fatal("published item missing from index")
	}
	if strings.Contains(string(body), "beta") {
		t.Fatal("unpublished item listed in index")
	}
	if _, err := os.Stat(filepath.Join(root, bag.HTMLDir, "index.html")); err != nil {
		t.Fatalf("index.html alias missing: %v", err)
	}
}

func TestStatusCountsCollection(t *testing.T) {
	w, _, _ := newWorkflow(t)
	root := testsupport.NewCollection(t)
	src := testsupport.WriteSource(t, root, "scan.tif", "tiff")

	final, err := w.Update(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Derive(context.Background(), final); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Publish(context.Background(), final); err != nil {
		t.Fatal(err)
	}

	sum, err := w.Status(root)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Items != 1 || sum.SourceFiles != 1 || sum.Derivatives != 2 || sum.Published != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	if sum.Title != "Test collection" {
		t.Fatalf("title = %q", sum.Title)
	}
	if sum.Manifest != 3 {
		t.Fatalf("manifest entries = %d", sum.Manifest)
	}
}

func TestLockedCollectionFailsFast(t *testing.T) {
	w := workflow.New(logging.NewNop(),
		workflow.WithConverter(&stubConverter{fail: map[string]error{}}),
		workflow.WithThumbnailer(&stubThumbnailer{}),
		workflow.WithLockTimeout(200*time.Millisecond),
	)
	root := testsupport.NewCollection(t)
	src := testsupport.WriteSource(t, root, "notes.txt", "field notes")

	lock := flock.New(filepath.Join(root, bag.LockFile))
	held, err := lock.TryLock()
	if err != nil || !held {
		t.Fatalf("could not pre-acquire lock: held=%v err=%v", held, err)
	}
	defer lock.Unlock()

	start := time.Now()
	_, err = w.Update(context.Background(), src)
	if !errors.Is(err, workflow.ErrLocked) {
		t.Fatalf("err = %v, want ErrLocked", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("lock wait took %v, timeout not honored", elapsed)
	}

	if _, err := os.Stat(src); err != nil {
		t.Fatalf("locked update touched the file: %v", err)
	}
}

func TestEditTargetResolvesSidecar(t *testing.T) {
	w, _, _ := newWorkflow(t)
	root := testsupport.NewCollection(t)
	src := testsupport.WriteSource(t, root, "notes.md", "text")

	final, err := w.Update(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	sidecar, err := w.EditTarget(final)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(sidecar); err != nil {
		t.Fatalf("sidecar missing: %v", err)
	}
	parts, _ := filename.Parse(filepath.Base(final))
	if filepath.Base(sidecar) != parts.UUID+".json" {
		t.Fatalf("sidecar = %s", sidecar)
	}
}

func itemSidecar(t *testing.T, root, taggedPath string) string {
	t.Helper()
	parts, err := filename.Parse(filepath.Base(taggedPath))
	if err != nil {
		t.Fatal(err)
	}
	return metadata.NewStore(root).ItemPath(parts.UUID)
}
