/*
Command iconfont inspects icon fonts. It prints a font summary, renders
single glyphs as normalized SVG paths, produces a specimen sheet of all
glyphs, or looks icons up by name interactively.

	iconfont -font material.ttf                     # font summary (JSON)
	iconfont -font material.ttf -format path        # specimen sheet
	iconfont -font material.ttf 0xe88a 57731        # glyph records (JSON)
	iconfont -font material.ttf -format path 0xe88a # glyph path only
	iconfont -font material.ttf -i                  # interactive lookup
*/
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"

	"github.com/aslpavel/icon-viewer/core"
	"github.com/aslpavel/icon-viewer/core/font/sfnt"
	"github.com/aslpavel/icon-viewer/icon"
)

// tracer traces with key 'iconfont.fonts'
func tracer() tracing.Trace {
	return tracing.Select("iconfont.fonts")
}

func main() {
	// command line flags
	fontname := flag.String("font", "", "Font file to load (.ttf)")
	tlevel := flag.String("trace", "Error", "Trace level [Debug|Info|Error]")
	format := flag.String("format", "json", "Output format [path|json]")
	interactive := flag.Bool("i", false, "Interactive icon lookup by name")
	flag.Parse()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":      "go",
		"trace.iconfont.fonts": *tlevel,
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Println("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	if *fontname == "" {
		pterm.Error.Println("no font given, use -font")
		os.Exit(2)
	}
	data, err := os.ReadFile(*fontname)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(2)
	}
	font, err := sfnt.Parse(data)
	if err != nil {
		core.UserError(err)
		os.Exit(3)
	}
	tracer().Infof("loaded %s: %s %s", *fontname, font.Names.Family, font.Names.Subfamily)

	switch {
	case *interactive:
		browse(font)
	case flag.NArg() == 0:
		summary(font, *format)
	default:
		glyphs(font, flag.Args(), *format)
	}
}

// summary prints the font info record or, with -format path, the
// specimen sheet of all glyphs.
func summary(font *sfnt.Font, format string) {
	switch format {
	case "path":
		specimen, err := font.Specimen(0, 0, 0)
		if err != nil {
			core.UserError(err)
			os.Exit(4)
		}
		fmt.Println(specimen)
	case "json":
		info, err := font.Info()
		if err != nil {
			core.UserError(err)
			os.Exit(4)
		}
		emitJSON(info)
	default:
		pterm.Error.Printfln("unknown format: %s", format)
		os.Exit(2)
	}
}

// glyphRecord is the JSON shape of a single glyph query.
type glyphRecord struct {
	GlyphID int        `json:"glyph_id"`
	Name    string     `json:"name,omitempty"`
	Bearing int16      `json:"bearing"`
	Advance uint16     `json:"advance"`
	BBox    [4]float64 `json:"bbox"`
	Path    string     `json:"path"`
}

// glyphs renders one glyph per command line argument.
func glyphs(font *sfnt.Font, args []string, format string) {
	for _, arg := range args {
		cp, err := parseCodepoint(arg)
		if err != nil {
			pterm.Error.Printfln("not a codepoint: %s", arg)
			os.Exit(2)
		}
		glyph, err := font.GlyphByCodepoint(cp)
		if err != nil {
			core.UserError(err)
			os.Exit(4)
		}
		if glyph == nil {
			pterm.Error.Printfln("font does not have codepoint U+%04X", cp)
			os.Exit(4)
		}
		path, err := glyph.ToSVGPath(sfnt.SVGOptions{Precision: sfnt.DefaultSVGPrecision})
		if err != nil {
			core.UserError(err)
			os.Exit(4)
		}
		switch format {
		case "path":
			fmt.Println(path)
		case "json":
			post, _ := font.Post()
			hmtx, err := font.HMtx()
			if err != nil {
				core.UserError(err)
				os.Exit(4)
			}
			record := glyphRecord{
				GlyphID: int(glyph.ID()),
				Bearing: hmtx.SideBearing(glyph.ID()),
				Advance: hmtx.Advance(glyph.ID()),
				BBox: [4]float64{
					glyph.MinPoint.X, glyph.MinPoint.Y,
					glyph.MaxPoint.X, glyph.MaxPoint.Y,
				},
				Path: path,
			}
			if post != nil {
				record.Name = post.GlyphToName[glyph.ID()]
			}
			emitJSON(record)
		default:
			pterm.Error.Printfln("unknown format: %s", format)
			os.Exit(2)
		}
	}
}

// browse runs the interactive icon lookup: every input line is a name
// prefix, matching icons are listed, and an exact name prints the
// icon's SVG document.
func browse(font *sfnt.Font) {
	catalog, err := icon.NewCatalog(font, nil)
	if err != nil {
		core.UserError(err)
		os.Exit(4)
	}
	pterm.Info.Printfln("%s: %d named icons", font.Names.Family, catalog.Len())
	pterm.Info.Println("type a name prefix, quit with <ctrl>D")
	repl, err := readline.New("icon > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	defer repl.Close()
	for {
		line, err := repl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			if err != io.EOF && err != readline.ErrInterrupt {
				tracer().Errorf(err.Error())
			}
			return
		}
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		if ic, ok := catalog.Lookup(name); ok {
			fmt.Print(ic.SVGString())
			continue
		}
		matches := catalog.Search(name)
		if len(matches) == 0 {
			pterm.Error.Printfln("no icon matches %q", name)
			continue
		}
		for _, ic := range matches {
			fmt.Printf("%-40s U+%04X\n", ic.Name, ic.Codepoint)
		}
	}
}

func parseCodepoint(arg string) (rune, error) {
	if strings.HasPrefix(arg, "0x") || strings.HasPrefix(arg, "0X") {
		n, err := strconv.ParseUint(arg[2:], 16, 32)
		return rune(n), err
	}
	n, err := strconv.ParseUint(arg, 10, 32)
	return rune(n), err
}

func emitJSON(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(5)
	}
	fmt.Println(string(out))
}
