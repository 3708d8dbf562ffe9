/*
Package icon projects glyphs of an icon font onto displayable SVG
documents, and indexes them by name for lookup and prefix search.

An Icon pairs a glyph with its name and code-point; Icon.SVGString
renders it as a standalone 100×100 SVG document. A Catalog holds all
icons of one font, sorted by name, and answers the lookups an icon
browser needs: exact name, name prefix, full enumeration.
*/
package icon

import (
	"fmt"
	"sort"

	"github.com/aslpavel/icon-viewer/core/font/sfnt"
	"github.com/derekparker/trie"
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'iconfont.fonts'
func tracer() tracing.Trace {
	return tracing.Select("iconfont.fonts")
}

// Icon is one named glyph of an icon font.
type Icon struct {
	Name      string
	Codepoint rune
	font      *sfnt.Font
	glyph     *sfnt.Glyph
}

// Glyph returns the glyph backing this icon.
func (ic *Icon) Glyph() *sfnt.Glyph {
	return ic.glyph
}

// SVGString renders the icon as a standalone SVG document with a
// 100×100 view box. Icons without contours render as "", as do glyphs
// whose outline cannot be decoded (the error is logged, not raised; a
// single bad icon must not take down the browser).
func (ic *Icon) SVGString() string {
	path, err := ic.glyph.ToSVGPath(sfnt.SVGOptions{Precision: sfnt.DefaultSVGPrecision})
	if err != nil {
		tracer().Errorf("icon %s: %v", ic.Name, err)
		return ""
	}
	if path == "" {
		return ""
	}
	return fmt.Sprintf("<?xml version=\"1.0\"?>\n"+
		"<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 100 100\">\n"+
		"  <path d=\"%s\"/>\n"+
		"</svg>\n", path)
}

// --- Catalog ---------------------------------------------------------------

// Catalog indexes the icons of one font by name.
type Catalog struct {
	font   *sfnt.Font
	byName *treemap.Map // name → *Icon, sorted by name
	index  *trie.Trie   // name prefix search
}

// NewCatalog builds a catalog for a font from a name → code-point
// mapping. A nil mapping derives the names from the font itself
// ('post' names joined with 'cmap' code-points). Names whose code-point
// the font does not cover are logged and skipped.
func NewCatalog(f *sfnt.Font, names map[string]rune) (*Catalog, error) {
	if names == nil {
		var err error
		if names, err = f.CodepointByName(); err != nil {
			return nil, err
		}
	}
	c := &Catalog{
		font:   f,
		byName: treemap.NewWithStringComparator(),
		index:  trie.New(),
	}
	for name, cp := range names {
		glyph, err := f.GlyphByCodepoint(cp)
		if err != nil {
			return nil, err
		}
		if glyph == nil {
			tracer().Infof("font %s has no glyph for %q (U+%04X)", f.Names.Family, name, cp)
			continue
		}
		ic := &Icon{Name: name, Codepoint: cp, font: f, glyph: glyph}
		c.byName.Put(name, ic)
		c.index.Add(name, ic)
	}
	return c, nil
}

// Len returns the number of icons in the catalog.
func (c *Catalog) Len() int {
	return c.byName.Size()
}

// Lookup returns the icon with the exact given name.
func (c *Catalog) Lookup(name string) (*Icon, bool) {
	v, ok := c.byName.Get(name)
	if !ok {
		return nil, false
	}
	return v.(*Icon), true
}

// Search returns all icons whose name starts with prefix, sorted by
// name. An empty prefix returns every icon.
func (c *Catalog) Search(prefix string) []*Icon {
	if prefix == "" {
		icons := make([]*Icon, 0, c.Len())
		c.Each(func(ic *Icon) {
			icons = append(icons, ic)
		})
		return icons
	}
	keys := c.index.PrefixSearch(prefix)
	sort.Strings(keys)
	icons := make([]*Icon, 0, len(keys))
	for _, key := range keys {
		if ic, ok := c.Lookup(key); ok {
			icons = append(icons, ic)
		}
	}
	return icons
}

// Each calls fn for every icon, in name order.
func (c *Catalog) Each(fn func(*Icon)) {
	c.byName.Each(func(_ interface{}, value interface{}) {
		fn(value.(*Icon))
	})
}
