package whitespace

import "strings"

// Default display values of HTML elements from the browser default style
// sheet, with the overrides HTML formatters apply for elements that have no
// CSS display but render that way.
var displayTags = map[string]string{
	// display: none
	"area":     "none",
	"base":     "none",
	"basefont": "none",
	"datalist": "none",
	"head":     "none",
	"link":     "none",
	"meta":     "none",
	"noembed":  "none",
	"noframes": "none",
	"rp":       "none",
	"style":    "none",
	"title":    "none",

	// display: block
	"html":       "block",
	"body":       "block",
	"address":    "block",
	"blockquote": "block",
	"center":     "block",
	"div":        "block",
	"figure":     "block",
	"figcaption": "block",
	"footer":     "block",
	"form":       "block",
	"header":     "block",
	"hr":         "block",
	"legend":     "block",
	"listing":    "block",
	"main":       "block",
	"p":          "block",
	"plaintext":  "block",
	"pre":        "block",
	"xmp":        "block",
	"article":    "block",
	"aside":      "block",
	"h1":         "block",
	"h2":         "block",
	"h3":         "block",
	"h4":         "block",
	"h5":         "block",
	"h6":         "block",
	"hgroup":     "block",
	"nav":        "block",
	"section":    "block",
	"dir":        "block",
	"dd":         "block",
	"dl":         "block",
	"dt":         "block",
	"menu":       "block",
	"ol":         "block",
	"ul":         "block",
	"fieldset":   "block",
	"frameset":   "block",
	"frame":      "block",
	"optgroup":   "block",
	"option":     "block",
	"details":    "block",
	"summary":    "block",
	"dialog":     "block",
	"source":     "block",
	"track":      "block",
	"script":     "block",
	"param":      "block",

	"li": "list-item",

	"table":    "table",
	"caption":  "table-caption",
	"colgroup": "table-column-group",
	"col":      "table-column",
	"thead":    "table-header-group",
	"tbody":    "table-row-group",
	"tfoot":    "table-footer-group",
	"tr":       "table-row",
	"td":       "table-cell",
	"th":       "table-cell",

	"ruby": "ruby",
	"rt":   "ruby-text",

	"input":    "inline-block",
	"button":   "inline-block",
	"meter":    "inline-block",
	"progress": "inline-block",
	"object":   "inline-block",
	"video":    "inline-block",
	"audio":    "inline-block",
	"select":   "inline-block",
	"marquee":  "inline-block",

	"template": "inline",
}

var canvasDisplayTags = map[string]string{
	"if":     "inline",
	"else":   "inline",
	"elseif": "inline",
	"for":    "inline",
	"block":  "block",
	"set":    "none",
}

var whiteSpaceTags = map[string]string{
	"pre":       "pre",
	"listing":   "pre",
	"plaintext": "pre-wrap",
	"xmp":       "pre",
	"textarea":  "pre-wrap",
	"nobr":      "nowrap",
}

var canvasWhiteSpaceTags = map[string]string{
	"verbatim": "pre",
}

const (
	defaultDisplay       = "inline"
	defaultCanvasDisplay = "inline"
	defaultWhiteSpace    = "normal"
)

// IsBlockLike reports whether display starts a new line box.
func IsBlockLike(display string) bool {
	return display == "block" || display == "list-item" || strings.HasPrefix(display, "table")
}

func createsInlineFormattingContext(display string) bool {
	return IsBlockLike(display) || display == "inline" || display == "inline-block"
}

func isInnerLeftSensitive(display string) bool {
	return !IsBlockLike(display) && display != "inline-block"
}

func isInnerRightSensitive(display string) bool {
	return !IsBlockLike(display) && display != "inline-block"
}

func isOuterLeftSensitive(display string) bool {
	return !IsBlockLike(display)
}

func isOuterRightSensitive(display string) bool {
	return !IsBlockLike(display)
}

func isDanglingSensitiveDisplay(display string) bool {
	return !IsBlockLike(display) && display != "inline-block"
}
