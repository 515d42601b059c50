// Package naming implements the table-name derivation rules from spec §4.5
// and §9: PascalCase -> snake_case, then English pluralization.
package naming

import "strings"

// ToSnakeCase converts PascalCase or camelCase to snake_case, inserting an
// underscore before an uppercase letter when the previous rune is
// lowercase, or when the next rune is lowercase and the previous rune is
// uppercase (so "UserID" -> "user_id", not "user_i_d").
func ToSnakeCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		isUpper := r >= 'A' && r <= 'Z'
		if isUpper {
			prevLower := i > 0 && isLower(runes[i-1])
			nextLower := i+1 < len(runes) && isLower(runes[i+1]) && i > 0 && isUpper2(runes[i-1])
			if prevLower || nextLower {
				b.WriteByte('_')
			}
			b.WriteRune(toLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isLower(r rune) bool  { return r >= 'a' && r <= 'z' }
func isUpper2(r rune) bool { return r >= 'A' && r <= 'Z' }
func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// irregulars is the closed irregular-noun mapping from spec §9.
var irregulars = map[string]string{
	"person":  "people",
	"child":   "children",
	"mouse":   "mice",
	"man":     "men",
	"woman":   "women",
	"tooth":   "teeth",
	"foot":    "feet",
	"goose":   "geese",
	"datum":   "data",
	"index":   "indices",
	"matrix":  "matrices",
	"vertex":  "vertices",
	"analysis": "analyses",
	"axis":    "axes",
	"crisis":  "crises",
	"thesis":  "theses",
	"ox":      "oxen",
	"quiz":    "quizzes",
	"cactus":  "cacti",
	"focus":   "foci",
	"fungus":  "fungi",
	"nucleus": "nuclei",
	"syllabus": "syllabi",
}

// alreadyPlural holds the values of irregulars, so re-pluralizing an
// already-plural irregular noun is a no-op (spec §8.2).
var alreadyPlural map[string]bool

func init() {
	alreadyPlural = make(map[string]bool, len(irregulars))
	for _, v := range irregulars {
		alreadyPlural[v] = true
	}
}

// shortOExceptions take a plain "+s" instead of "+es" (spec §9).
var shortOExceptions = map[string]bool{
	"photo": true,
	"piano": true,
	"halo":  true,
	"memo":  true,
	"pro":   true,
	"auto":  true,
}

// Pluralize applies the English pluralization rules of spec §9, in order:
// irregular table, then suffix rules. An already-plural irregular noun is
// returned unchanged.
func Pluralize(word string) string {
	if word == "" {
		return word
	}
	lower := strings.ToLower(word)

	if alreadyPlural[lower] {
		return word
	}
	if plural, ok := irregulars[lower]; ok {
		return matchCase(word, plural)
	}

	n := len(lower)
	switch {
	case strings.HasSuffix(lower, "s"), strings.HasSuffix(lower, "x"),
		strings.HasSuffix(lower, "ch"), strings.HasSuffix(lower, "sh"):
		return word + "es"
	case strings.HasSuffix(lower, "z"):
		if n >= 2 && isVowel(rune(lower[n-2])) {
			return word + "zes"
		}
		return word + "es"
	case strings.HasSuffix(lower, "y"):
		if n >= 2 && !isVowel(rune(lower[n-2])) {
			return word[:len(word)-1] + "ies"
		}
		return word + "s"
	case strings.HasSuffix(lower, "fe"):
		return word[:len(word)-2] + "ves"
	case strings.HasSuffix(lower, "f"):
		return word[:len(word)-1] + "ves"
	case strings.HasSuffix(lower, "o"):
		if shortOExceptions[lower] {
			return word + "s"
		}
		if n >= 2 && !isVowel(rune(lower[n-2])) {
			return word + "es"
		}
		return word + "s"
	default:
		return word + "s"
	}
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	default:
		return false
	}
}

func matchCase(original, plural string) string {
	if original == strings.ToUpper(original) {
		return strings.ToUpper(plural)
	}
	if len(original) > 0 && original[0] >= 'A' && original[0] <= 'Z' {
		return strings.ToUpper(plural[:1]) + plural[1:]
	}
	return plural
}

// TableName derives the default table name for a Go struct name: snake_case
// then pluralize (spec §4.5 item 1).
func TableName(structName string) string {
	return Pluralize(ToSnakeCase(structName))
}
