package sfnt

import (
	"testing"

	"github.com/aslpavel/icon-viewer/core"
	"github.com/aslpavel/icon-viewer/core/geom"
	"github.com/aslpavel/icon-viewer/internal/testfont"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"golang.org/x/image/font/gofont/goregular"
)

func TestTags(t *testing.T) {
	tag := Tag(0x636d6170)
	if tag.String() != "cmap" {
		t.Errorf("expected tag 0x636d6170 to be 'cmap', is %s", tag.String())
	}
	tag = MakeTag([]byte("cmap"))
	if tag.String() != "cmap" {
		t.Errorf("expected tag MakeTag(cmap) to be 'cmap', is %s", tag.String())
	}
	tag = T("cmap")
	if tag.String() != "cmap" {
		t.Errorf("expected tag T(cmap) to be 'cmap', is %s", tag.String())
	}
}

func TestSFNTDetection(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "iconfont.fonts")
	defer teardown()
	//
	font, err := Parse(testfont.IconFont())
	if err != nil {
		t.Fatal(err)
	}
	if font.Kind != KindTrueType {
		t.Errorf("expected kind ttf, got %s", font.Kind)
	}
	font, err = Parse(testfont.CFFFont())
	if err != nil {
		t.Fatal(err)
	}
	if font.Kind != KindCFF {
		t.Errorf("expected kind otf, got %s", font.Kind)
	}
	_, err = Parse([]byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	if core.Code(err) != core.EUNSUPPORTED {
		t.Errorf("expected EUNSUPPORTED for zero magic, got %v", err)
	}
	_, err = Parse([]byte{0, 1})
	if core.Code(err) != core.ETRUNCATED {
		t.Errorf("expected ETRUNCATED for a 2-byte font, got %v", err)
	}
}

func TestParseIconFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "iconfont.fonts")
	defer teardown()
	//
	font, err := Parse(testfont.IconFont())
	if err != nil {
		t.Fatal(err)
	}
	if font.GlyphCount != 5 {
		t.Errorf("expected 5 glyphs, got %d", font.GlyphCount)
	}
	if font.Names.Family != "Test Icons" {
		t.Errorf("expected family 'Test Icons', got %q", font.Names.Family)
	}
	if font.Names.Subfamily != "Regular" {
		t.Errorf("expected subfamily 'Regular', got %q", font.Names.Subfamily)
	}
	if font.Names.Version != "Version 1.0" {
		t.Errorf("expected version 'Version 1.0', got %q", font.Names.Version)
	}
	head, err := font.Head()
	if err != nil {
		t.Fatal(err)
	}
	if head.UnitsPerEm != 2048 {
		t.Errorf("expected 2048 units per em, got %d", head.UnitsPerEm)
	}
	if head.IndexToLocFormat != 0 {
		t.Errorf("expected short loca format, got %d", head.IndexToLocFormat)
	}
}

func TestLocaInvariants(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "iconfont.fonts")
	defer teardown()
	//
	font, err := Parse(testfont.IconFont())
	if err != nil {
		t.Fatal(err)
	}
	loca, err := font.Loca()
	if err != nil {
		t.Fatal(err)
	}
	if len(loca.Offsets) != font.GlyphCount+1 {
		t.Fatalf("expected %d loca offsets, got %d", font.GlyphCount+1, len(loca.Offsets))
	}
	glyfLen := font.Tables[T("glyf")].Length
	for i := 0; i < len(loca.Offsets)-1; i++ {
		if loca.Offsets[i] > loca.Offsets[i+1] {
			t.Errorf("loca offset %d not monotone: %d > %d", i, loca.Offsets[i], loca.Offsets[i+1])
		}
		if loca.Offsets[i+1] > glyfLen {
			t.Errorf("loca offset %d exceeds glyf table: %d > %d", i+1, loca.Offsets[i+1], glyfLen)
		}
	}
}

func TestPostNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "iconfont.fonts")
	defer teardown()
	//
	font, err := Parse(testfont.IconFont())
	if err != nil {
		t.Fatal(err)
	}
	post, err := font.Post()
	if err != nil {
		t.Fatal(err)
	}
	want := map[GlyphIndex]string{1: "square", 2: "curve", 3: "compound"}
	if len(post.GlyphToName) != len(want) {
		t.Errorf("expected %d post names, got %d", len(want), len(post.GlyphToName))
	}
	for gid, name := range want {
		if post.GlyphToName[gid] != name {
			t.Errorf("expected glyph %d to be named %q, got %q", gid, name, post.GlyphToName[gid])
		}
	}
}

func TestHMtxMetrics(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "iconfont.fonts")
	defer teardown()
	//
	font, err := Parse(testfont.IconFont())
	if err != nil {
		t.Fatal(err)
	}
	hmtx, err := font.HMtx()
	if err != nil {
		t.Fatal(err)
	}
	if a := hmtx.Advance(0); a != 500 {
		t.Errorf("expected advance 500 for glyph 0, got %d", a)
	}
	if a := hmtx.Advance(1); a != 600 {
		t.Errorf("expected advance 600 for glyph 1, got %d", a)
	}
	// glyphs past the explicit records inherit the last advance
	if a := hmtx.Advance(4); a != 600 {
		t.Errorf("expected advance 600 for glyph 4, got %d", a)
	}
	if sb := hmtx.SideBearing(1); sb != 60 {
		t.Errorf("expected side bearing 60 for glyph 1, got %d", sb)
	}
	if sb := hmtx.SideBearing(3); sb != 80 {
		t.Errorf("expected side bearing 80 for glyph 3, got %d", sb)
	}
}

func TestGlyphByCodepoint(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "iconfont.fonts")
	defer teardown()
	//
	font, err := Parse(testfont.IconFont())
	if err != nil {
		t.Fatal(err)
	}
	glyph, err := font.GlyphByCodepoint(0x41)
	if err != nil {
		t.Fatal(err)
	}
	if glyph == nil || glyph.ID() != 1 {
		t.Fatalf("expected U+0041 to resolve to glyph 1, got %v", glyph)
	}
	glyph, err = font.GlyphByCodepoint(0x4F)
	if err != nil {
		t.Fatal(err)
	}
	if glyph != nil {
		t.Errorf("expected U+004F to be unmapped, got glyph %d", glyph.ID())
	}
}

func TestCodepointByName(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "iconfont.fonts")
	defer teardown()
	//
	font, err := Parse(testfont.IconFont())
	if err != nil {
		t.Fatal(err)
	}
	names, err := font.CodepointByName()
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]rune{"square": 0x41, "curve": 0x42, "compound": 0x43}
	if len(names) != len(want) {
		t.Errorf("expected %d named code-points, got %d: %v", len(want), len(names), names)
	}
	for name, cp := range want {
		if names[name] != cp {
			t.Errorf("expected %q to map to U+%04X, got U+%04X", name, cp, names[name])
		}
	}
}

func TestCFFOutlinesUnsupported(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "iconfont.fonts")
	defer teardown()
	//
	font, err := Parse(testfont.CFFFont())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := font.GlyphByCodepoint(0x41); core.Code(err) != core.EUNSUPPORTED {
		t.Errorf("expected EUNSUPPORTED for CFF outlines, got %v", err)
	}
	// loca and glyf are simply absent, not an error
	loca, err := font.Loca()
	if err != nil || loca != nil {
		t.Errorf("expected (nil, nil) loca for a CFF font, got %v (%v)", loca, err)
	}
	glyf, err := font.Glyf()
	if err != nil || glyf != nil {
		t.Errorf("expected (nil, nil) glyf for a CFF font, got %v (%v)", glyf, err)
	}
}

func TestMissingRequiredTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "iconfont.fonts")
	defer teardown()
	//
	font := testfont.SFNT(0x00010000, []testfont.Table{
		{Tag: "head", Data: testfont.Head(2048, 0)},
		{Tag: "name", Data: testfont.Name("No MaxP", "Regular", "1.0")},
	})
	_, err := Parse(font)
	if core.Code(err) != core.EMISSING {
		t.Errorf("expected EMISSING for a font without maxp, got %v", err)
	}
}

func TestTableMemoization(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "iconfont.fonts")
	defer teardown()
	//
	font, err := Parse(testfont.IconFont())
	if err != nil {
		t.Fatal(err)
	}
	cmap1, err := font.CMap()
	if err != nil {
		t.Fatal(err)
	}
	cmap2, err := font.CMap()
	if err != nil {
		t.Fatal(err)
	}
	if cmap1 != cmap2 {
		t.Error("expected the cmap table to be decoded only once")
	}
}

func TestFontInfo(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "iconfont.fonts")
	defer teardown()
	//
	font, err := Parse(testfont.IconFont())
	if err != nil {
		t.Fatal(err)
	}
	info, err := font.Info()
	if err != nil {
		t.Fatal(err)
	}
	if info.Family != "Test Icons" || info.GlyphCount != 5 || info.UnitsPerEm != 2048 {
		t.Errorf("unexpected font info: %+v", info)
	}
	if info.PostNameCount != 3 {
		t.Errorf("expected 3 post names, got %d", info.PostNameCount)
	}
	if len(info.TableSizes) != len(font.Tables) {
		t.Errorf("expected %d table sizes, got %d", len(font.Tables), len(info.TableSizes))
	}
}

// --- A real font -----------------------------------------------------------

func TestGoRegular(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "iconfont.fonts")
	defer teardown()
	//
	font, err := Parse(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	if font.Kind != KindTrueType {
		t.Fatalf("expected Go Regular to be a TrueType font, is %s", font.Kind)
	}
	if font.GlyphCount == 0 {
		t.Fatal("expected a non-zero glyph count")
	}
	if font.Names.Family == "" {
		t.Error("expected a family name")
	}
	head, err := font.Head()
	if err != nil {
		t.Fatal(err)
	}
	if head.UnitsPerEm == 0 {
		t.Error("expected non-zero units per em")
	}
	if _, err := font.CMap(); err != nil {
		t.Errorf("cmap: %v", err)
	}
	if _, err := font.Post(); err != nil {
		t.Errorf("post: %v", err)
	}
	if _, err := font.HMtx(); err != nil {
		t.Errorf("hmtx: %v", err)
	}
}

// every contour of every glyph must satisfy the move…close contract
func TestGoRegularOutlinesWellFormed(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "iconfont.fonts")
	defer teardown()
	//
	font, err := Parse(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	glyf, err := font.Glyf()
	if err != nil {
		t.Fatal(err)
	}
	if glyf == nil {
		t.Fatal("expected Go Regular to have a glyf table")
	}
	failed := 0
	for _, glyph := range glyf.Glyphs() {
		rec := &outlineRecorder{t: t}
		if err := glyph.BuildOutline(rec, geom.Identity()); err != nil {
			failed++
			continue
		}
		if rec.open {
			t.Errorf("glyph %d left a contour open", glyph.ID())
		}
	}
	if failed > 0 {
		t.Errorf("%d of %d glyphs failed to decode", failed, glyf.Len())
	}
}
