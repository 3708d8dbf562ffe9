package icon

import (
	"strings"
	"testing"

	"github.com/aslpavel/icon-viewer/core/font/sfnt"
	"github.com/aslpavel/icon-viewer/internal/testfont"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"
)

func iconFont(t *testing.T) *sfnt.Font {
	font, err := sfnt.Parse(testfont.IconFont())
	require.NoError(t, err)
	return font
}

func TestCatalogFromFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "iconfont.fonts")
	defer teardown()
	//
	catalog, err := NewCatalog(iconFont(t), nil)
	require.NoError(t, err)
	require.Equal(t, 3, catalog.Len())

	ic, ok := catalog.Lookup("square")
	require.True(t, ok)
	require.Equal(t, rune(0x41), ic.Codepoint)
	require.Equal(t, sfnt.GlyphIndex(1), ic.Glyph().ID())

	_, ok = catalog.Lookup("no-such-icon")
	require.False(t, ok)
}

func TestCatalogExplicitNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "iconfont.fonts")
	defer teardown()
	//
	// the host may supply its own name → code-point mapping; names the
	// font cannot resolve are dropped
	catalog, err := NewCatalog(iconFont(t), map[string]rune{
		"box":     0x41,
		"wave":    0x42,
		"unknown": 0x4F,
	})
	require.NoError(t, err)
	require.Equal(t, 2, catalog.Len())
	_, ok := catalog.Lookup("box")
	require.True(t, ok)
	_, ok = catalog.Lookup("unknown")
	require.False(t, ok)
}

func TestCatalogSearch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "iconfont.fonts")
	defer teardown()
	//
	catalog, err := NewCatalog(iconFont(t), nil)
	require.NoError(t, err)

	names := func(icons []*Icon) []string {
		r := make([]string, len(icons))
		for i, ic := range icons {
			r[i] = ic.Name
		}
		return r
	}
	require.Equal(t, []string{"compound", "curve"}, names(catalog.Search("c")))
	require.Equal(t, []string{"square"}, names(catalog.Search("squ")))
	require.Empty(t, catalog.Search("zz"))
	// an empty prefix lists everything, in name order
	require.Equal(t, []string{"compound", "curve", "square"}, names(catalog.Search("")))
}

func TestCatalogEachIsSorted(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "iconfont.fonts")
	defer teardown()
	//
	catalog, err := NewCatalog(iconFont(t), nil)
	require.NoError(t, err)
	var seen []string
	catalog.Each(func(ic *Icon) {
		seen = append(seen, ic.Name)
	})
	require.Equal(t, []string{"compound", "curve", "square"}, seen)
}

func TestIconSVGString(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "iconfont.fonts")
	defer teardown()
	//
	catalog, err := NewCatalog(iconFont(t), nil)
	require.NoError(t, err)
	ic, ok := catalog.Lookup("square")
	require.True(t, ok)

	svg := ic.SVGString()
	require.True(t, strings.HasPrefix(svg, "<?xml version=\"1.0\"?>\n"))
	require.Contains(t, svg, "<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 100 100\">")
	require.Contains(t, svg, "<path d=\"M")
	require.True(t, strings.HasSuffix(svg, "</svg>\n"))
}

func TestIconWithoutContoursRendersEmpty(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "iconfont.fonts")
	defer teardown()
	//
	// U+0044 resolves to the self-referential composite, which has no
	// drawable outline; the icon renders as ""
	catalog, err := NewCatalog(iconFont(t), map[string]rune{"cycle": 0x44})
	require.NoError(t, err)
	ic, ok := catalog.Lookup("cycle")
	require.True(t, ok)
	require.Equal(t, "", ic.SVGString())
}
