/*
Package sfnt reads fonts in the SFNT container format, i.e. TrueType
(.ttf) and OpenType (.otf) files.

The package decodes the handful of tables needed to map Unicode
code-points to glyphs and to reconstruct TrueType glyph outlines:
'head', 'name', 'post', 'cmap', 'maxp', 'hhea', 'hmtx', 'loca' and
'glyf'. Outlines are handed to clients as a stream of move / line /
quad / cubic / close commands (see OutlineBuilder), which is enough to
produce SVG paths for icon display.

This is deliberately a shallow reader. Hinting, kerning, the layout
tables (GSUB/GPOS), color fonts and variable fonts are not interpreted.
CFF outlines ('OTTO' fonts) are detected but not decoded.

A Font keeps the font's binary data in memory and hands out table views
into it; tables are decoded lazily and memoized, so a Font is cheap to
open and safe to share between readers.
*/
package sfnt

import (
	"github.com/aslpavel/icon-viewer/core"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'iconfont.fonts'
func tracer() tracing.Trace {
	return tracing.Select("iconfont.fonts")
}

// errFontFormat produces user level errors for unsupported font formats.
func errFontFormat(x string) error {
	return core.Error(core.EUNSUPPORTED, "SFNT font format: %s", x)
}

// errMalformed produces user level errors for fonts which violate the
// OpenType specification.
func errMalformed(x string) error {
	return core.Error(core.EINVALID, "malformed font: %s", x)
}

// errMissingTable produces user level errors for fonts lacking a
// required table.
func errMissingTable(tag Tag) error {
	return core.Error(core.EMISSING, "font has no '%s' table", tag)
}
