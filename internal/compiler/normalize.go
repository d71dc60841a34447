package compiler

import (
	"regexp"
	"strings"
	"unicode"
)

// jsSpace is the whitespace set of JavaScript's \s: ASCII whitespace plus
// vertical tab, every Unicode space separator and the byte order mark.
const jsSpace = `[\t\n\v\f\r\p{Z}\x{FEFF}]`

// jsPattern compiles a pattern in which \s means jsSpace. [\s\S] keeps
// matching any character.
func jsPattern(pattern string) *regexp.Regexp {
	const anyChar = "\x00ANY\x00"
	pattern = strings.ReplaceAll(pattern, `[\s\S]`, anyChar)
	pattern = strings.ReplaceAll(pattern, `\s`, jsSpace)
	return regexp.MustCompile(strings.ReplaceAll(pattern, anyChar, `[\s\S]`))
}

func isJSSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\uFEFF':
		return true
	}
	return unicode.Is(unicode.Z, r)
}

func trimJSSpace(s string) string {
	return strings.TrimFunc(s, isJSSpace)
}

// importPatterns are applied in order. Later patterns overlap earlier ones, so
// reordering them leaves partial residue behind.
var importPatterns = []*regexp.Regexp{
	// import type { A } from "x";
	jsPattern(`import\s+type\s*\{[\s\S]*?\}\s*from\s*["'][^"']+["'];?`),
	// import A, { B } from "x";
	jsPattern(`import\s+\w+\s*,\s*\{[\s\S]*?\}\s*from\s*["'][^"']+["'];?`),
	// import { A,\n B } from "x";
	jsPattern(`import\s*\{[\s\S]*?\}\s*from\s*["'][^"']+["'];?`),
	// import * as A from "x";
	jsPattern(`import\s+\*\s+as\s+\w+\s+from\s*["'][^"']+["'];?`),
	// import A from "x";
	jsPattern(`import\s+\w+\s+from\s*["'][^"']+["'];?`),
	// import "x";
	jsPattern(`import\s*["'][^"']+["'];?`),
}

// componentPattern matches "<helpers> export const X = () => { <body> };".
var componentPattern = jsPattern(`^([\s\S]*?)export\s+const\s+\w+\s*=\s*\(\s*\)\s*=>\s*\{([\s\S]*)\};?\s*$`)

// StripImports removes every import declaration form from source.
func StripImports(source string) string {
	cleaned := source
	for _, p := range importPatterns {
		cleaned = p.ReplaceAllLiteralString(cleaned, "")
	}
	return cleaned
}

// Normalize turns generated source into the statements that form the
// component body. Source that is not shaped like an exported zero-argument
// arrow component passes through with only its imports removed.
func Normalize(source string) string {
	cleaned := trimJSSpace(StripImports(source))

	m := componentPattern.FindStringSubmatch(cleaned)
	if m == nil {
		return cleaned
	}
	helpers := trimJSSpace(m[1])
	body := trimJSSpace(m[2])
	if helpers == "" {
		return body
	}
	return helpers + "\n\n" + body
}

// ScaffoldName is the identifier the scaffold binds the component to.
const ScaffoldName = "DynamicAnimation"

// Scaffold wraps a normalized body in a zero-argument component function.
func Scaffold(body string) string {
	return "const " + ScaffoldName + " = () => {\n" + body + "\n};"
}
