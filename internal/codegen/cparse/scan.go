package cparse

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/ssfrr/embody/internal/codegen/ast"
)

var blockCommentRe = regexp.MustCompile(`/\*[\s\S]*?\*/`)
var lineCommentRe = regexp.MustCompile(`//[^\n]*`)
var directiveRe = regexp.MustCompile(`(?m)^[ \t]*#.*(?:\\\n.*)*$`)
var multiSpaceRe = regexp.MustCompile(`[ \t]+`)
var typedefRe = regexp.MustCompile(`typedef\s+(?:[^;{}]|\{[^}]*\})+?(\w+)\s*;`)
var funcRe = regexp.MustCompile(`(?m)^[ \t]*((?:\w+\s+)*\w+(?:\s*\*+\s*|\s+))(\w+)\s*\(((?:[^()]|\([^()]*\))*)\)\s*;`)
var funcPtrNameRe = regexp.MustCompile(`\(\s*\*+\s*(?:const\s+)?(\w+)\s*\)`)
var storageRe = regexp.MustCompile(`\b(?:extern|static|inline)\s+`)
var starRe = regexp.MustCompile(`\s*(\*+)\s*`)

// parseScan is a structural scanner for plain prototypes. Parameters may
// nest one level of parentheses, enough for function pointers that do not
// themselves take function pointers. Macros are not expanded, apart from
// dropping words in front of the real return type; feed it preprocessed
// input for anything clever.
func parseScan(_ context.Context, path string, src []byte) (*ast.TranslationUnit, error) {
	content := removeComments(string(src))
	content = directiveRe.ReplaceAllString(content, "")
	content = normalizeWhitespace(content)

	type located struct {
		at   int
		node *ast.Node
	}
	var found []located

	for _, m := range typedefRe.FindAllStringSubmatchIndex(content, -1) {
		found = append(found, located{at: m[0], node: &ast.Node{Kind: ast.KindOther, Spelling: content[m[2]:m[3]]}})
	}
	for _, m := range funcRe.FindAllStringSubmatchIndex(content, -1) {
		fn := &ast.Node{
			Kind:     ast.KindFunctionDecl,
			Spelling: content[m[4]:m[5]],
			Type:     normalizeType(dropTypeMacros(storageRe.ReplaceAllString(content[m[2]:m[3]], ""))),
		}
		fn.Children = parseParams(content[m[6]:m[7]])
		found = append(found, located{at: m[0], node: fn})
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].at < found[j].at })

	tu := &ast.TranslationUnit{Path: path}
	for _, f := range found {
		tu.Children = append(tu.Children, f.node)
	}
	return tu, nil
}

func removeComments(s string) string {
	s = blockCommentRe.ReplaceAllString(s, "")
	s = lineCommentRe.ReplaceAllString(s, "")

	return s
}

func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = multiSpaceRe.ReplaceAllString(s, " ")

	return s
}

// normalizeType spells pointer types the way clang does: "char *", "void **".
func normalizeType(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = starRe.ReplaceAllString(s, " $1")
	return strings.TrimSpace(s)
}

func parseParams(paramsStr string) []*ast.Node {
	paramsStr = strings.TrimSpace(paramsStr)
	if paramsStr == "" || paramsStr == "void" {
		return nil
	}

	var params []*ast.Node
	for _, part := range splitTopLevel(paramsStr) {
		part = strings.Join(strings.Fields(part), " ")
		if part == "" {
			continue
		}
		if part == "..." {
			params = append(params, &ast.Node{Kind: ast.KindParmDecl, Type: "..."})
			continue
		}
		if strings.Contains(part, "(") {
			params = append(params, funcPtrParam(part))
			continue
		}

		array := false
		if i := strings.Index(part, "["); i != -1 {
			array = true
			part = strings.TrimSpace(part[:i])
		}

		typ, name := splitParam(part)
		typ = normalizeType(typ)
		if array {
			typ = normalizeType(typ + " *")
		}
		params = append(params, &ast.Node{Kind: ast.KindParmDecl, Spelling: name, Type: typ})
	}
	return params
}

// splitTopLevel splits a parameter list on commas outside parentheses.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i, c := range s {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// funcPtrParam splits "void (*cb)(int)" into the type "void (*)(int)" and
// the name "cb".
func funcPtrParam(part string) *ast.Node {
	m := funcPtrNameRe.FindStringSubmatchIndex(part)
	if m == nil {
		return &ast.Node{Kind: ast.KindParmDecl, Type: part}
	}
	typ := strings.Join(strings.Fields(part[:m[2]]+part[m[3]:]), " ")
	return &ast.Node{Kind: ast.KindParmDecl, Spelling: part[m[2]:m[3]], Type: typ}
}

// baseTypeWords can follow a macro in a return type.
var baseTypeWords = map[string]bool{
	"unsigned": true, "signed": true, "short": true, "long": true, "int": true, "char": true,
	"float": true, "double": true, "void": true, "struct": true, "union": true, "enum": true,
	"_Bool": true,
}

// dropTypeMacros removes identifiers that precede another type word, so
// "API int" becomes "int" and "EXPORT const my_t *" becomes "const my_t *".
func dropTypeMacros(typ string) string {
	tokens := strings.Fields(strings.ReplaceAll(typ, "*", " * "))
	isType := func(tok string) bool {
		return baseTypeWords[tok] || (!typeKeywords[tok] && tok != "*")
	}
	var kept []string
	for i, tok := range tokens {
		if isType(tok) && !baseTypeWords[tok] && (i == 0 || !isTagKeyword(tokens[i-1])) {
			later := false
			for _, next := range tokens[i+1:] {
				if isType(next) {
					later = true
					break
				}
			}
			if later {
				continue
			}
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

func isTagKeyword(tok string) bool {
	return tok == "struct" || tok == "union" || tok == "enum"
}

var typeKeywords = map[string]bool{
	"const": true, "volatile": true, "unsigned": true, "signed": true,
	"short": true, "long": true, "int": true, "char": true, "float": true,
	"double": true, "void": true, "struct": true, "union": true, "enum": true,
}

// splitParam separates "const char *name" into its type and name. A lone
// type such as "int" or "void *" is an unnamed parameter.
func splitParam(part string) (typ, name string) {
	if strings.HasSuffix(part, "*") {
		return part, ""
	}
	tokens := strings.Fields(strings.ReplaceAll(part, "*", " * "))
	if len(tokens) < 2 {
		return part, ""
	}
	last := tokens[len(tokens)-1]
	prev := tokens[len(tokens)-2]
	if typeKeywords[last] || prev == "struct" || prev == "union" || prev == "enum" {
		return part, ""
	}
	return strings.Join(tokens[:len(tokens)-1], " "), last
}
