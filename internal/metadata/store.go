package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/mcdrc/odea/internal/bag"
	"github.com/mcdrc/odea/internal/filename"
)

var (
	// ErrNotFound reports a missing metadata sidecar.
	ErrNotFound = errors.New("metadata not found")

	// ErrCorrupt reports an unparsable metadata sidecar. Processing of the
	// affected item aborts; other items are untouched.
	ErrCorrupt = errors.New("corrupt metadata")
)

// Store reads and writes the metadata sidecars of one collection. It holds
// no state beyond the root path; every operation re-reads the filesystem.
type Store struct {
	root string
}

// NewStore returns a store rooted at the collection root directory.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// ItemPath returns the sidecar path for an item identifier.
func (s *Store) ItemPath(id string) string {
	return filepath.Join(s.root, bag.ItemMetaDir, id+".json")
}

// FilePath returns the sidecar path for a file identifier and format tag.
func (s *Store) FilePath(id, tag string) string {
	return filepath.Join(s.root, bag.FileMetaDir, id+"."+tag+".json")
}

func (s *Store) collectionPath() string {
	return filepath.Join(s.root, bag.BagInfoFile)
}

// LoadItem returns the item record for id, or ErrNotFound.
func (s *Store) LoadItem(id string) (*Item, error) {
	var item Item
	if err := s.loadJSON(s.ItemPath(id), &item); err != nil {
		return nil, err
	}
	item.Identifier = id
	return &item, nil
}

// UpsertItem creates the item record if absent, seeding it from fields, or
// additively merges fields into the existing record. Existing non-null
// values always win.
func (s *Store) UpsertItem(id string, fields Item) (*Item, error) {
	item, err := s.LoadItem(id)
	switch {
	case errors.Is(err, ErrNotFound):
		item = &Item{Identifier: id}
	case err != nil:
		return nil, err
	}
	mergeItem(item, fields)
	if err := s.saveJSON(s.ItemPath(id), item); err != nil {
		return nil, err
	}
	return item, nil
}

// LoadFile returns the file record for the identifier and format tag, or
// ErrNotFound.
func (s *Store) LoadFile(id, tag string) (*FileRecord, error) {
	var rec FileRecord
	if err := s.loadJSON(s.FilePath(id, tag), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// WriteFileRecord persists rec, replacing any previous record for the same
// identifier and tag. File records are derived facts, so a full overwrite is
// always correct.
func (s *Store) WriteFileRecord(rec *FileRecord) error {
	if rec.Identifier == "" || rec.FormatTag == "" {
		return fmt.Errorf("file record requires identifier and format tag")
	}
	return s.saveJSON(s.FilePath(rec.Identifier, rec.FormatTag), rec)
}

// LoadCollection returns the bag-info.json record, or ErrNotFound.
func (s *Store) LoadCollection() (*Collection, error) {
	var col Collection
	if err := s.loadJSON(s.collectionPath(), &col); err != nil {
		return nil, err
	}
	return &col, nil
}

// UpsertCollection creates or additively merges the collection record. A new
// record receives a minted identifier and the Collection DCMI type.
func (s *Store) UpsertCollection(fields Collection) (*Collection, error) {
	col, err := s.LoadCollection()
	switch {
	case errors.Is(err, ErrNotFound):
		col = &Collection{
			Identifier: uuid.NewString(),
			DCMIType:   String("Collection"),
		}
	case err != nil:
		return nil, err
	}
	if col.Identifier == "" {
		col.Identifier = uuid.NewString()
	}
	mergeCollection(col, fields)
	if err := s.saveJSON(s.collectionPath(), col); err != nil {
		return nil, err
	}
	return col, nil
}

// ListItems loads every item record in identifier order. Corrupt sidecars
// are skipped; their errors are joined and returned alongside the readable
// items so one bad file cannot hide the rest of the collection.
func (s *Store) ListItems() ([]*Item, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, bag.ItemMetaDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", bag.ItemMetaDir, err)
	}

	var items []*Item
	var errs []error
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		if !filename.IsUUID(id) {
			continue
		}
		item, err := s.LoadItem(id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Identifier < items[j].Identifier })
	return items, errors.Join(errs...)
}

// ListFileTags returns the format tags with a file record for the item, in
// sorted order.
func (s *Store) ListFileTags(id string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, bag.FileMetaDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", bag.FileMetaDir, err)
	}

	prefix := id + "."
	var tags []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		tag := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".json")
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags, nil
}

// FileRecords loads every file record belonging to the item, ordered by
// format tag.
func (s *Store) FileRecords(id string) ([]*FileRecord, error) {
	tags, err := s.ListFileTags(id)
	if err != nil {
		return nil, err
	}
	recs := make([]*FileRecord, 0, len(tags))
	for _, tag := range tags {
		rec, err := s.LoadFile(id, tag)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (s *Store) loadJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, filepath.Base(path))
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, filepath.Base(path), err)
	}
	return nil
}

func (s *Store) saveJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	raw = append(raw, '\n')
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
