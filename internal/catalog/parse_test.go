package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// =============================================================================
// Catalog
// =============================================================================

func TestParseCatalogDefaults(t *testing.T) {
	doc := `<comics>
		<comic name="cat01" name_rus="Кот" pics="3" tags="cats cute"/>
		<comic name="dog02"/>
	</comics>`

	result := ParseCatalog(strings.NewReader(doc))
	if !result.OK() {
		t.Fatalf("ParseCatalog() failed: %v", result.Err())
	}

	want := Items{
		"cat01": {Name: "cat01", DisplayName: "Кот", PictureCount: 3, Tags: "cats cute"},
		"dog02": {Name: "dog02", DisplayName: "dog02", PictureCount: 0, Tags: ""},
	}
	if !reflect.DeepEqual(result.Items, want) {
		t.Errorf("Items = %+v, want %+v", result.Items, want)
	}
}

func TestParseCatalogOnlyDirectChildren(t *testing.T) {
	doc := `<comics>
		<comic name="top"/>
		<shelf><comic name="nested"/></shelf>
	</comics>`

	result := ParseCatalog(strings.NewReader(doc))
	if !result.OK() {
		t.Fatalf("ParseCatalog() failed: %v", result.Err())
	}
	if _, ok := result.Items["nested"]; ok {
		t.Error("nested comic element should not be read")
	}
	if _, ok := result.Items["top"]; !ok {
		t.Error("direct child comic element missing")
	}
}

func TestParseCatalogAliases(t *testing.T) {
	doc := `<catalog>
		<item name="a" display_name="Alpha" picture_count="2" tags="x"/>
		<comic name="b" name_rus="Beta" pics=" 4 "/>
	</catalog>`

	result := ParseCatalog(strings.NewReader(doc))
	if !result.OK() {
		t.Fatalf("ParseCatalog() failed: %v", result.Err())
	}
	if got := result.Items["a"]; got.DisplayName != "Alpha" || got.PictureCount != 2 {
		t.Errorf("item a = %+v", got)
	}
	if got := result.Items["b"]; got.DisplayName != "Beta" || got.PictureCount != 4 {
		t.Errorf("item b = %+v", got)
	}
}

func TestParseCatalogLastDefinitionWins(t *testing.T) {
	doc := `<comics><comic name="a" pics="1"/><comic name="a" pics="2"/></comics>`

	result := ParseCatalog(strings.NewReader(doc))
	if got := result.Items["a"].PictureCount; got != 2 {
		t.Errorf("PictureCount = %d, want 2", got)
	}
}

func TestParseCatalogSkipsNameless(t *testing.T) {
	doc := `<comics><comic pics="1"/><comic name=""/><comic name="ok"/></comics>`

	result := ParseCatalog(strings.NewReader(doc))
	if !result.OK() {
		t.Fatalf("ParseCatalog() failed: %v", result.Err())
	}
	if len(result.Items) != 1 {
		t.Errorf("len(Items) = %d, want 1", len(result.Items))
	}
}

func TestParseCatalogFailures(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty document", ""},
		{"unclosed root", "<comics><comic name='a'/>"},
		{"mismatched tags", "<comics></comic>"},
		{"not xml", "just some text"},
		{"bad picture count", `<comics><comic name="a" pics="three"/></comics>`},
		{"negative picture count", `<comics><comic name="a" pics="-1"/></comics>`},
		{"second root", `<comics/><comics/>`},
		{"unknown encoding", `<?xml version="1.0" encoding="x-made-up"?><comics/>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseCatalog(strings.NewReader(tt.doc))
			if result.OK() {
				t.Fatalf("ParseCatalog(%q) succeeded, want failure", tt.doc)
			}
			if result.Items == nil || len(result.Items) != 0 {
				t.Errorf("Items = %v, want empty non-nil map", result.Items)
			}
			var pe *ParseError
			if !errors.As(result.Err(), &pe) {
				t.Fatalf("Err() = %v, want *ParseError", result.Err())
			}
			if pe.Document != "catalog" {
				t.Errorf("Document = %q, want catalog", pe.Document)
			}
		})
	}
}

func TestParseCatalogLegacyEncoding(t *testing.T) {
	// "Кот" in windows-1251.
	doc := "<?xml version=\"1.0\" encoding=\"windows-1251\"?>" +
		"<comics><comic name=\"cat01\" name_rus=\"\xca\xee\xf2\"/></comics>"

	result := ParseCatalog(strings.NewReader(doc))
	if !result.OK() {
		t.Fatalf("ParseCatalog() failed: %v", result.Err())
	}
	if got := result.Items["cat01"].DisplayName; got != "Кот" {
		t.Errorf("DisplayName = %q, want %q", got, "Кот")
	}
}

func TestParseCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comics.xml")
	if err := os.WriteFile(path, []byte(`<comics><comic name="a"/></comics>`), 0o644); err != nil {
		t.Fatal(err)
	}

	if result := ParseCatalogFile(path); !result.OK() || len(result.Items) != 1 {
		t.Errorf("ParseCatalogFile() = %+v", result)
	}

	missing := ParseCatalogFile(filepath.Join(t.TempDir(), "missing.xml"))
	if missing.OK() {
		t.Error("expected failure for missing file")
	}
	if !errors.Is(missing.Err(), os.ErrNotExist) {
		t.Errorf("Err() = %v, want wrapping os.ErrNotExist", missing.Err())
	}
}

// =============================================================================
// Groups
// =============================================================================

func TestParseGroups(t *testing.T) {
	doc := `<playlists>
		<playlist name="Pets">
			<content name="cat01"/>
			<content name="dog02"/>
			<content name="cat01"/>
		</playlist>
		<playlist name="Empty"/>
	</playlists>`

	result := ParseGroups(strings.NewReader(doc))
	if !result.OK() {
		t.Fatalf("ParseGroups() failed: %v", result.Err())
	}

	want := Groups{
		"Pets":  {"cat01", "dog02", "cat01"},
		"Empty": {},
	}
	if !reflect.DeepEqual(result.Groups, want) {
		t.Errorf("Groups = %v, want %v", result.Groups, want)
	}
}

func TestParseGroupsFallbackName(t *testing.T) {
	doc := `<playlists><playlist><content name="x"/></playlist></playlists>`

	result := ParseGroups(strings.NewReader(doc))
	if !result.OK() {
		t.Fatalf("ParseGroups() failed: %v", result.Err())
	}
	members, ok := result.Groups[UnnamedGroup]
	if !ok {
		t.Fatalf("expected group %q, got %v", UnnamedGroup, result.Groups)
	}
	if !reflect.DeepEqual(members, []string{"x"}) {
		t.Errorf("members = %v, want [x]", members)
	}
}

func TestParseGroupsEmptyNameIsKept(t *testing.T) {
	doc := `<playlists>
		<playlist name=""><content name="x"/></playlist>
		<playlist><content name="y"/></playlist>
	</playlists>`

	result := ParseGroups(strings.NewReader(doc))
	if !result.OK() {
		t.Fatalf("ParseGroups() failed: %v", result.Err())
	}
	want := Groups{
		"":           {"x"},
		UnnamedGroup: {"y"},
	}
	if !reflect.DeepEqual(result.Groups, want) {
		t.Errorf("Groups = %v, want %v", result.Groups, want)
	}
}

func TestParseGroupsDescendantSearch(t *testing.T) {
	doc := `<root>
		<section>
			<playlist name="Deep">
				<folder><content name="a"/></folder>
				<content/>
				<content name="b"/>
			</playlist>
		</section>
		<content name="orphan"/>
	</root>`

	result := ParseGroups(strings.NewReader(doc))
	if !result.OK() {
		t.Fatalf("ParseGroups() failed: %v", result.Err())
	}
	if got := result.Groups["Deep"]; !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Deep = %v, want [a b]", got)
	}
	if len(result.Groups) != 1 {
		t.Errorf("len(Groups) = %d, want 1", len(result.Groups))
	}
}

func TestParseGroupsNested(t *testing.T) {
	doc := `<playlists>
		<playlist name="Outer">
			<content name="a"/>
			<playlist name="Inner">
				<content name="b"/>
			</playlist>
			<content name="c"/>
		</playlist>
	</playlists>`

	result := ParseGroups(strings.NewReader(doc))
	if !result.OK() {
		t.Fatalf("ParseGroups() failed: %v", result.Err())
	}
	if got := result.Groups["Outer"]; !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("Outer = %v, want [a b c]", got)
	}
	if got := result.Groups["Inner"]; !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("Inner = %v, want [b]", got)
	}
}

func TestParseGroupsLastDefinitionWins(t *testing.T) {
	doc := `<playlists>
		<playlist name="P"><content name="first"/></playlist>
		<playlist name="P"><content name="second"/></playlist>
	</playlists>`

	result := ParseGroups(strings.NewReader(doc))
	if got := result.Groups["P"]; !reflect.DeepEqual(got, []string{"second"}) {
		t.Errorf("P = %v, want [second]", got)
	}
}

func TestParseGroupsRootIsNotAGroup(t *testing.T) {
	result := ParseGroups(strings.NewReader(`<playlist name="root"><content name="a"/></playlist>`))
	if !result.OK() {
		t.Fatalf("ParseGroups() failed: %v", result.Err())
	}
	if len(result.Groups) != 0 {
		t.Errorf("Groups = %v, want empty", result.Groups)
	}
}

func TestParseGroupsMalformed(t *testing.T) {
	result := ParseGroups(strings.NewReader(`<playlists><playlist name="P"><content name="a"/>`))
	if result.OK() {
		t.Fatal("expected failure for truncated document")
	}
	if len(result.Groups) != 0 {
		t.Errorf("Groups = %v, want empty", result.Groups)
	}
	var pe *ParseError
	if !errors.As(result.Err(), &pe) || pe.Document != "groups" {
		t.Errorf("Err() = %v, want groups *ParseError", result.Err())
	}
}

func TestParseGroupsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playlists.xml")
	doc := `<playlists><playlist name="Pets"><content name="cat01"/></playlist></playlists>`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	result := ParseGroupsFile(path)
	if !result.OK() || len(result.Groups["Pets"]) != 1 {
		t.Errorf("ParseGroupsFile() = %+v", result)
	}
	if ParseGroupsFile(filepath.Join(t.TempDir(), "nope.xml")).OK() {
		t.Error("expected failure for missing file")
	}
}

func TestItemTags(t *testing.T) {
	item := Item{Name: "a", Tags: "  cats,cute\tfluffy; "}

	if got := item.TagList(); !reflect.DeepEqual(got, []string{"cats", "cute", "fluffy"}) {
		t.Errorf("TagList() = %v", got)
	}
	if !item.HasTag("cute") {
		t.Error("HasTag(cute) = false")
	}
	if item.HasTag("cat") {
		t.Error("HasTag(cat) = true, tags match whole words")
	}
}
