// Package names converts identifiers between the naming styles used by the
// generator.
package names

import (
	"go/token"
	"strings"
	"sync"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	mu       sync.RWMutex
	rules    = ruleset()
	acronyms = make(map[string]struct{})
)

func ruleset() *inflect.Ruleset {
	rules := inflect.NewDefaultRuleset()
	for _, w := range []string{
		"ACL", "API", "ASCII", "CPU", "CSS", "DNS", "EOF", "GUID", "HTML", "HTTP",
		"HTTPS", "ID", "IP", "JSON", "LHS", "QPS", "RAM", "RHS", "RPC", "SLA",
		"SMTP", "SQL", "SSH", "TCP", "TLS", "TTL", "UDP", "UI", "UID", "UUID",
		"URI", "URL", "UTF8", "VM", "XML", "XMPP", "XSRF", "XSS", "YAML",
	} {
		addAcronym(rules, w)
	}
	return rules
}

func addAcronym(rs *inflect.Ruleset, w string) {
	acronyms[w] = struct{}{}
	rs.AddAcronym(w)
}

// AddAcronym registers an acronym kept upper case by Pascal and Camel.
func AddAcronym(w string) {
	mu.Lock()
	defer mu.Unlock()
	addAcronym(rules, strings.ToUpper(w))
}

// Snake converts s to snake_case, keeping acronyms together
// ("HTTPCode" becomes "http_code").
func Snake(s string) string {
	var (
		j int
		b strings.Builder
	)
	for i := 0; i < len(s); i++ {
		r := rune(s[i])
		// Put '_' if it is not the start or the end of a word, the current
		// letter is upper case, and the previous letter is lower case or the
		// next letter is lower case and the previous one is a letter.
		if i > 0 && i < len(s)-1 && unicode.IsUpper(r) {
			if unicode.IsLower(rune(s[i-1])) ||
				j != i-1 && unicode.IsLower(rune(s[i+1])) && unicode.IsLetter(rune(s[i-1])) {
				j = i
				b.WriteString("_")
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Pascal converts a snake_case or kebab-case name to PascalCase.
func Pascal(s string) string {
	return pascalWords(words(s))
}

// Camel converts a snake_case or kebab-case name to camelCase.
func Camel(s string) string {
	ws := words(s)
	if len(ws) == 0 {
		return ""
	}
	return strings.ToLower(ws[0]) + pascalWords(ws[1:])
}

func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
}

func pascalWords(ws []string) string {
	mu.RLock()
	defer mu.RUnlock()
	title := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, w := range ws {
		upper := strings.ToUpper(w)
		if _, ok := acronyms[upper]; ok {
			b.WriteString(upper)
			continue
		}
		b.WriteString(title.String(w))
	}
	return b.String()
}

// Exported returns s as an exported Go identifier. Names that are already
// exported are returned unchanged.
func Exported(s string) string {
	if s == "" || unicode.IsUpper(rune(s[0])) {
		return s
	}
	return Pascal(Snake(s))
}

// Unexported returns s as an unexported Go identifier, escaping keywords.
func Unexported(s string) string {
	if s != "" && !unicode.IsLower(rune(s[0])) && s[0] != '_' {
		s = Camel(Snake(s))
	}
	return Ident(s)
}

// Ident escapes Go keywords with a leading underscore.
func Ident(s string) string {
	if token.IsKeyword(s) {
		return "_" + s
	}
	return s
}

// Receiver returns the receiver name of a method on type s, built from the
// first letter of every word ("PointAdapterWriter" becomes "paw").
func Receiver(s string) string {
	s = strings.Trim(s, "[]*&0123456789")
	var b strings.Builder
	for _, w := range words(Snake(s)) {
		b.WriteByte(w[0])
	}
	return Ident(strings.ToLower(b.String()))
}

// Plural returns the plural form of a lower case word.
func Plural(s string) string {
	mu.RLock()
	defer mu.RUnlock()
	return rules.Pluralize(s)
}
