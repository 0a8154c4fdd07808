// ===== internal/menu/writer.go =====
// Package menu emits the line-oriented protocol consumed by xbar and
// SwiftBar: one menu item per line, nesting expressed by a repeated "--"
// prefix, rendering hints in a trailing "| key=value ..." block.
package menu

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// param is one key=value rendering hint; order of application is
// preserved on the line
type param struct {
	key   string
	value string
}

// item accumulates one menu line before writing
type item struct {
	text   string
	params []param
}

func (it *item) set(key, value string) {
	it.params = append(it.params, param{key, value})
}

// Option configures one menu item
type Option func(w *Writer, it *item)

// MD renders the item text as markdown
func MD() Option {
	return func(w *Writer, it *item) { it.set("md", "true") }
}

// SFImage shows an SF Symbol next to the item. Empty symbols are
// silently skipped so icon fallback chains can end in "".
func SFImage(symbol string) Option {
	return func(w *Writer, it *item) {
		if symbol != "" {
			it.set("sfimage", symbol)
		}
	}
}

// Image shows inline image bytes next to the item
func Image(data []byte) Option {
	return func(w *Writer, it *item) {
		it.set("image", base64.StdEncoding.EncodeToString(data))
	}
}

// TemplateImage sets the menu-bar template icon from base64 PNG data
func TemplateImage(b64 string) Option {
	return func(w *Writer, it *item) { it.set("templateImage", b64) }
}

// Href opens a URL when the item is clicked
func Href(url string) Option {
	return func(w *Writer, it *item) { it.set("href", url) }
}

// Refresh makes the item re-run the plugin when clicked
func Refresh() Option {
	return func(w *Writer, it *item) { it.set("refresh", "true") }
}

// Color sets the item's text color
func Color(c string) Option {
	return func(w *Writer, it *item) { it.set("color", c) }
}

// Size sets the item's text size
func Size(n int) Option {
	return func(w *Writer, it *item) { it.set("size", strconv.Itoa(n)) }
}

// Tabs pads the item text with trailing tab characters, for rough
// column alignment across sibling items
func Tabs(n int) Option {
	return func(w *Writer, it *item) {
		it.text += strings.Repeat("\t", n)
	}
}

// Plain disables symbol and emoji substitution in the item text, for
// values like MAC addresses that would otherwise be mangled
func Plain() Option {
	return func(w *Writer, it *item) {
		// symbolize is SwiftBar-only; xbar chokes on it
		if w.swiftbar {
			it.set("symbolize", "false")
		}
		it.set("emojize", "false")
	}
}

// Copy makes clicking the item copy value to the clipboard. The value
// travels as its own argv element to this binary's copy subcommand, so
// no shell string is ever built from it.
func Copy(value string) Option {
	return func(w *Writer, it *item) {
		it.set("bash", w.executable)
		it.set("param1", "copy")
		it.set("param2", value)
		it.set("terminal", "false")
	}
}

// CopyText is Copy with the item's own text as the value
func CopyText() Option {
	return func(w *Writer, it *item) {
		Copy(it.text)(w, it)
	}
}

// Writer emits menu lines, tracking the current nesting depth
type Writer struct {
	out        io.Writer
	depth      int
	executable string
	swiftbar   bool
}

// NewWriter creates a menu writer for the host's stdout stream
func NewWriter(out io.Writer) *Writer {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}
	return &Writer{
		out:        out,
		executable: exe,
		swiftbar:   os.Getenv("SWIFTBAR") == "1",
	}
}

// Submenu runs fn one nesting level deeper. The depth is restored on
// every exit path, panics included, so a failure inside one scope cannot
// mis-indent the siblings that follow.
func (w *Writer) Submenu(fn func()) {
	w.depth++
	defer func() {
		w.depth--
	}()
	fn()
}

// Depth returns the current nesting depth
func (w *Writer) Depth() int {
	return w.depth
}

// Sep emits a horizontal separator at the current depth
func (w *Writer) Sep() {
	fmt.Fprintln(w.out, strings.Repeat("--", w.depth)+"---")
}

// Item emits one menu line at the current depth. An item with neither
// text nor params emits nothing.
func (w *Writer) Item(text string, opts ...Option) {
	it := &item{text: text}
	for _, opt := range opts {
		opt(w, it)
	}

	var segments []string
	if it.text != "" {
		segments = append(segments, it.text)
	}
	if len(it.params) > 0 {
		segments = append(segments, "|")
		for _, p := range it.params {
			segments = append(segments, p.key+"="+quoteParam(p.value))
		}
	}
	if len(segments) == 0 {
		return
	}

	fmt.Fprintln(w.out, strings.Repeat("--", w.depth)+strings.Join(segments, " "))
}

// quoteParam quotes a param value when the host would otherwise split it
// on whitespace
func quoteParam(v string) string {
	if strings.ContainsAny(v, " \t|") {
		return strconv.Quote(v)
	}
	return v
}
