package dictionary

import "sort"

// locale describes how one supported language maps onto the dictionary
// site: the path segment of its dictionary and the selector locating the
// definition block. Page layouts differ per locale, so both vary together.
type locale struct {
	path        string
	defSelector string
}

var locales = map[string]locale{
	"en": {path: "english", defSelector: "div.def.ddef_d.db"},
	"cn": {path: "english-chinese-simplified", defSelector: "div.tc-bb.tb.lpb-25.break-cj"},
}

// Languages returns the supported language selectors in sorted order.
func Languages() []string {
	out := make([]string, 0, len(locales))
	for lang := range locales {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// Supported reports whether language is a supported locale selector.
func Supported(language string) bool {
	_, ok := locales[language]
	return ok
}
