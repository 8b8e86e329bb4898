package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mcdrc/odea/internal/logging"
	"github.com/mcdrc/odea/internal/services"
)

func TestConvertRunsTemplate(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.txt")
	dst := filepath.Join(dir, "out.txt")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewCLI(logging.NewNop(), WithCommands(map[string]string{
		"df-copy": `cp "{source}" "{target}"`,
	}))
	if err := c.Convert(context.Background(), Request{Source: src, Target: dst, Tag: "df-copy"}); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "payload" {
		t.Fatalf("output = %q", got)
	}
}

func TestConvertMissingTemplate(t *testing.T) {
	c := NewCLI(logging.NewNop())
	err := c.Convert(context.Background(), Request{Source: "a", Target: "b", Tag: "df-nope"})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}

func TestConvertFailureWithoutOutput(t *testing.T) {
	dir := t.TempDir()
	c := NewCLI(logging.NewNop(), WithCommands(map[string]string{
		"df-fail": `exit 3`,
	}))
	err := c.Convert(context.Background(), Request{
		Source: filepath.Join(dir, "in"),
		Target: filepath.Join(dir, "out"),
		Tag:    "df-fail",
	})
	if !errors.Is(err, services.ErrConversionFailed) {
		t.Fatalf("err = %v, want ErrConversionFailed", err)
	}
}

func TestConvertNonzeroExitWithOutputSucceeds(t *testing.T) {
	// Some wkhtmltox builds exit 1 even when the target was written.
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.pdf")
	c := NewCLI(logging.NewNop(), WithCommands(map[string]string{
		"df-quirky": `echo ok > "{target}"; exit 1`,
	}))
	if err := c.Convert(context.Background(), Request{Source: "in", Target: dst, Tag: "df-quirky"}); err != nil {
		t.Fatalf("expected success when output exists, got %v", err)
	}
}

func TestConvertTimeout(t *testing.T) {
	dir := t.TempDir()
	c := NewCLI(logging.NewNop(),
		WithCommands(map[string]string{"df-slow": `sleep 5`}),
		WithTimeouts(50*time.Millisecond, time.Second),
	)
	err := c.Convert(context.Background(), Request{
		Source: filepath.Join(dir, "in"),
		Target: filepath.Join(dir, "out"),
		Tag:    "df-slow",
	})
	if !errors.Is(err, services.ErrConversionFailed) {
		t.Fatalf("err = %v, want ErrConversionFailed on timeout", err)
	}
}

func TestConvertFrameSubstitution(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.txt")
	c := NewCLI(logging.NewNop(), WithCommands(map[string]string{
		"df-frame": `echo "{frame}" > "{target}"`,
	}))
	if err := c.Convert(context.Background(), Request{Source: "x", Target: dst, Tag: "df-frame", Frame: "42"}); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "42\n" {
		t.Fatalf("frame substitution wrote %q", got)
	}
}
