package bag

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// manifest entries are "<hash>  <path>" lines scoped to the data/ payload.
// The file is rewritten sorted by path on every change so diffs stay stable.

// UpdateManifest inserts or replaces the manifest entry for one payload path.
// relPath is slash-separated and relative to the collection root; entries
// outside data/ are rejected.
func UpdateManifest(root, relPath, checksum string) error {
	if !strings.HasPrefix(relPath, DataDir+"/") {
		return fmt.Errorf("manifest entry %q outside payload", relPath)
	}
	entries, err := readManifest(root)
	if err != nil {
		return err
	}
	entries[relPath] = checksum
	return writeManifest(root, entries)
}

// RenameManifestEntry moves a manifest entry when a payload file is renamed.
// Missing source entries are ignored.
func RenameManifestEntry(root, oldRel, newRel string) error {
	entries, err := readManifest(root)
	if err != nil {
		return err
	}
	sum, ok := entries[oldRel]
	if !ok {
		return nil
	}
	delete(entries, oldRel)
	entries[newRel] = sum
	return writeManifest(root, entries)
}

// PruneManifest drops entries whose payload files no longer exist.
func PruneManifest(root string) error {
	entries, err := readManifest(root)
	if err != nil {
		return err
	}
	changed := false
	for rel := range entries {
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); os.IsNotExist(err) {
			delete(entries, rel)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return writeManifest(root, entries)
}

func readManifest(root string) (map[string]string, error) {
	entries := make(map[string]string)
	f, err := os.Open(filepath.Join(root, ManifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return entries, nil
		}
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		hash, path, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		entries[strings.TrimSpace(path)] = hash
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return entries, nil
}

func writeManifest(root string, entries map[string]string) error {
	paths := make([]string, 0, len(entries))
	for p := range entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	for _, p := range paths {
		fmt.Fprintf(&b, "%s  %s\n", entries[p], p)
	}
	if err := os.WriteFile(filepath.Join(root, ManifestFile), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
