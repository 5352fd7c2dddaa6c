package syntax

import (
	"regexp"
	"strings"
)

var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"keygen": true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// Elements whose body is opaque text up to the matching close tag.
var rawElements = map[string]RawKind{
	"script":   RawJavaScript,
	"style":    RawCSS,
	"textarea": RawText,
}

var rawCloseTags = map[string]*regexp.Regexp{
	"script":   regexp.MustCompile(`(?i)</script\s*>`),
	"style":    regexp.MustCompile(`(?i)</style\s*>`),
	"textarea": regexp.MustCompile(`(?i)</textarea\s*>`),
}

var verbatimEnd = regexp.MustCompile(`\{%(-?)\s*endverbatim\s*(-?)%\}`)

// Block tags that always own a body, whatever follows them.
var alwaysBlockTags = map[string]bool{
	"if":         true,
	"for":        true,
	"macro":      true,
	"apply":      true,
	"autoescape": true,
	"embed":      true,
	"filter":     true,
	"sandbox":    true,
	"spaceless":  true,
	"with":       true,
}

// IsVoidElement reports whether name is an HTML void element.
func IsVoidElement(name string) bool {
	return voidElements[strings.ToLower(name)]
}

// IsBranchName reports whether a tag continues the branches of its block.
func IsBranchName(name string) bool {
	return name == "else" || name == "elseif"
}

func scriptKind(source string, attrs []Token) RawKind {
	for i := range attrs {
		a := &attrs[i]
		if !strings.EqualFold(a.HTMLName(source), "type") {
			continue
		}
		switch a.Kind {
		case AttrDoubleQuoted, AttrSingleQuoted, AttrUnquoted:
		default:
			continue
		}
		value := strings.ToLower(strings.TrimSpace(source[a.ValueSpan.Start:a.ValueSpan.End]))
		switch value {
		case "", "module", "text/javascript", "application/javascript", "text/babel", "jsx":
			return RawJavaScript
		case "application/json", "application/ld+json", "importmap":
			return RawJSON
		}
		return RawText
	}
	return RawJavaScript
}
