package filename

import "testing"

const sampleUUID = "b3050922-520f-426e-9a9c-cfe728bd178d"

func TestParsePositional(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want Parts
	}{
		{"two segments", "photo.jpg", Parts{Basename: "photo", Ext: "jpg"}},
		{"three with tag", "photo.SRC.jpg", Parts{Basename: "photo", FormatTag: "SRC", Ext: "jpg"}},
		{"three with uuid", "photo." + sampleUUID + ".jpg", Parts{Basename: "photo", UUID: sampleUUID, Ext: "jpg"}},
		{"four segments", "photo.df-med-img." + sampleUUID + ".png", Parts{Basename: "photo", FormatTag: "df-med-img", UUID: sampleUUID, Ext: "png"}},
		{"dotted basename", "test.file.many.parts.txt", Parts{Basename: "test.file.many.parts", Ext: "txt"}},
		{"dotted basename with tag", "2024.01.15.interview.SRC.mp4", Parts{Basename: "2024.01.15.interview", FormatTag: "SRC", Ext: "mp4"}},
		{"dotted basename with tag and uuid", "v1.2.final.SRC." + sampleUUID + ".mp4", Parts{Basename: "v1.2.final", FormatTag: "SRC", UUID: sampleUUID, Ext: "mp4"}},
		{"segments after uuid fold into ext", "a.df-x." + sampleUUID + ".c.d.txt", Parts{Basename: "a", FormatTag: "df-x", UUID: sampleUUID, Ext: "c.d.txt"}},
		{"non-tag interior stays in basename", "a.b." + sampleUUID + ".txt", Parts{Basename: "a.b", UUID: sampleUUID, Ext: "txt"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.in)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("Parse(%q) = %+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseRejectsMissingExtension(t *testing.T) {
	for _, in := range []string{"no-extension", "trailing-dot.", ".hidden", ""} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) succeeded, want ErrMalformed", in)
		}
	}
}

func TestBuildRoundTrip(t *testing.T) {
	inputs := []Parts{
		{Basename: "photo", Ext: "jpg"},
		{Basename: "photo", FormatTag: "SRC", UUID: sampleUUID, Ext: "jpg"},
		{Basename: "clip", FormatTag: "df-360p-vp9-400k", UUID: sampleUUID, Ext: "webm"},
		{Basename: "scan", FormatTag: "pf-tiff", UUID: sampleUUID, Ext: "tif"},
		{Basename: "test.file.many.parts", FormatTag: "SRC", UUID: sampleUUID, Ext: "txt"},
	}
	for _, in := range inputs {
		name, err := Build(in)
		if err != nil {
			t.Fatalf("Build(%+v) returned error: %v", in, err)
		}
		got, err := Parse(name)
		if err != nil {
			t.Fatalf("Parse(Build(%+v)) returned error: %v", in, err)
		}
		if got != in {
			t.Fatalf("round trip mismatch: built %q, parsed %+v, want %+v", name, got, in)
		}
	}
}

func TestBuildRejectsInvalidTag(t *testing.T) {
	if _, err := Build(Parts{Basename: "x", FormatTag: "thumbnail", Ext: "png"}); err == nil {
		t.Fatal("expected error for tag outside the SRC/df-*/pf-* vocabulary")
	}
	if _, err := Build(Parts{Basename: "x", FormatTag: "df-", Ext: "png"}); err == nil {
		t.Fatal("expected error for empty tag suffix")
	}
}

func TestIsFormatTag(t *testing.T) {
	valid := []string{"SRC", "df-med-img", "pf-wav", "df-x"}
	invalid := []string{"", "src", "DF-med", "preview", "pf-"}
	for _, s := range valid {
		if !IsFormatTag(s) {
			t.Errorf("IsFormatTag(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsFormatTag(s) {
			t.Errorf("IsFormatTag(%q) = true, want false", s)
		}
	}
}

func TestFindUUID(t *testing.T) {
	path := "data/interviews." + sampleUUID + ".dir/clip01.mp4"
	if got := FindUUID(path); got != sampleUUID {
		t.Fatalf("FindUUID = %q, want %q", got, sampleUUID)
	}
	if got := FindUUID("data/plain/clip.mp4"); got != "" {
		t.Fatalf("FindUUID on untagged path = %q, want empty", got)
	}
}

func TestSlug(t *testing.T) {
	cases := []struct{ in, want string }{
		{"My Field Notes (2019)", "My-Field-Notes-2019"},
		{"Ménage à trois", "Menage-a-trois"},
		{"MyVideo", "MyVideo"},
		{"already_slugged-name", "already_slugged-name"},
		{"data/Sub Dir/File Name", "data/Sub-Dir/File-Name"},
	}
	for _, tc := range cases {
		if got := Slug(tc.in); got != tc.want {
			t.Errorf("Slug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSlugStable(t *testing.T) {
	once := Slug("A Long  Name with   Spaces")
	if twice := Slug(once); twice != once {
		t.Fatalf("Slug not idempotent: %q -> %q", once, twice)
	}
}
