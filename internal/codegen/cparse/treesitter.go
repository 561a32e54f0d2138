package cparse

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"

	"github.com/ssfrr/embody/internal/codegen/ast"
)

func parseTreeSitter(ctx context.Context, path string, src []byte) (*ast.TranslationUnit, error) {
	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(c.GetLanguage())

	tree, err := p.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	w := tsWalker{src: src}
	tu := &ast.TranslationUnit{Path: path}
	tu.Children = w.collect(tree.RootNode(), true)
	return tu, nil
}

type tsWalker struct {
	src []byte
}

// preprocContainers hold declarations that are still top level once the
// preprocessor has run, e.g. everything inside an include guard.
var preprocContainers = map[string]bool{
	"preproc_ifdef":   true,
	"preproc_if":      true,
	"preproc_else":    true,
	"preproc_elif":    true,
	"preproc_elifdef": true,
}

var typeSpecifiers = map[string]bool{
	"primitive_type":       true,
	"type_identifier":      true,
	"sized_type_specifier": true,
	"struct_specifier":     true,
	"union_specifier":      true,
	"enum_specifier":       true,
	"macro_type_specifier": true,
}

func (w tsWalker) text(n *sitter.Node) string {
	return strings.Join(strings.Fields(n.Content(w.src)), " ")
}

func sameNode(a, b *sitter.Node) bool {
	return a != nil && b != nil && a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}

// collect flattens the top-level declarations below n in source order.
// Nodes that are not declarations are kept as KindOther when keepOther is set.
func (w tsWalker) collect(n *sitter.Node, keepOther bool) []*ast.Node {
	var out []*ast.Node
	skipName := n.ChildByFieldName("name")
	skipCond := n.ChildByFieldName("condition")

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if sameNode(child, skipName) || sameNode(child, skipCond) {
			continue
		}
		switch t := child.Type(); {
		case t == "comment":
			continue
		case preprocContainers[t]:
			out = append(out, w.collect(child, keepOther)...)
		case t == "ERROR":
			out = append(out, w.collect(child, false)...)
		case t == "linkage_specification":
			// extern "C" { ... } or extern "C" int f(void);
			if body := child.ChildByFieldName("body"); body != nil {
				if body.Type() == "declaration_list" {
					out = append(out, w.collect(body, keepOther)...)
				} else if fn := w.function(body); fn != nil {
					out = append(out, fn)
				}
			}
		case t == "declaration" || t == "function_definition":
			if fn := w.function(child); fn != nil {
				out = append(out, fn)
			} else if keepOther {
				out = append(out, &ast.Node{Kind: ast.KindOther, Spelling: t})
			}
		default:
			if keepOther {
				out = append(out, &ast.Node{Kind: ast.KindOther, Spelling: t})
			}
		}
	}
	return out
}

// function converts a declaration with a function declarator. It returns
// nil for any other declaration (variables, typedefs, function pointers).
func (w tsWalker) function(n *sitter.Node) *ast.Node {
	d := n.ChildByFieldName("declarator")
	var ptrs []string
	for d != nil && d.Type() == "pointer_declarator" {
		ptrs = append(ptrs, w.pointerSegment(d))
		d = d.ChildByFieldName("declarator")
	}
	if d == nil || d.Type() != "function_declarator" {
		return nil
	}
	name := d.ChildByFieldName("declarator")
	if name == nil || name.Type() != "identifier" {
		return nil
	}

	fn := &ast.Node{Kind: ast.KindFunctionDecl, Spelling: w.text(name)}
	fn.Children = append(fn.Children, &ast.Node{
		Kind:     ast.KindTypeRef,
		Spelling: withPointers(w.baseType(n), ptrs),
	})
	if params := d.ChildByFieldName("parameters"); params != nil {
		fn.Children = append(fn.Children, w.params(params)...)
	}
	return fn
}

// baseType joins the qualifiers and type specifier of a declaration,
// leaving out storage classes such as static, extern and inline. When an
// unexpanded macro precedes the real type, as in "API int f(void)", only
// the last specifier is kept.
func (w tsWalker) baseType(n *sitter.Node) string {
	var quals []string
	spec := ""
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			switch t := child.Type(); {
			case t == "type_qualifier":
				quals = append(quals, w.text(child))
			case typeSpecifiers[t]:
				spec = w.text(child)
			case t == "ERROR":
				if child.NamedChildCount() == 0 {
					if word := w.text(child); typeKeywords[word] {
						spec = word
					}
					continue
				}
				visit(child)
			}
		}
	}
	visit(n)
	if spec != "" {
		quals = append(quals, spec)
	}
	return strings.Join(quals, " ")
}

func (w tsWalker) pointerSegment(d *sitter.Node) string {
	seg := "*"
	for i := 0; i < int(d.NamedChildCount()); i++ {
		child := d.NamedChild(i)
		if child.Type() == "type_qualifier" {
			seg += w.text(child) + " "
		}
	}
	return seg
}

func withPointers(base string, ptrs []string) string {
	if len(ptrs) == 0 {
		return base
	}
	return strings.TrimRight(base+" "+strings.Join(ptrs, ""), " ")
}

func (w tsWalker) params(list *sitter.Node) []*ast.Node {
	var out []*ast.Node
	for i := 0; i < int(list.ChildCount()); i++ {
		child := list.Child(i)
		switch child.Type() {
		case "parameter_declaration":
			out = append(out, w.param(child))
		case "variadic_parameter", "...":
			out = append(out, &ast.Node{Kind: ast.KindParmDecl, Type: "..."})
		}
	}
	// (void) declares no parameters.
	if len(out) == 1 && out[0].Type == "void" && out[0].Spelling == "" {
		return nil
	}
	return out
}

func (w tsWalker) param(n *sitter.Node) *ast.Node {
	base := w.baseType(n)
	var ptrs []string
	d := n.ChildByFieldName("declarator")
	for d != nil {
		switch d.Type() {
		case "identifier":
			return &ast.Node{Kind: ast.KindParmDecl, Spelling: w.text(d), Type: withPointers(base, ptrs)}
		case "pointer_declarator", "abstract_pointer_declarator":
			ptrs = append(ptrs, w.pointerSegment(d))
		case "array_declarator", "abstract_array_declarator":
			// Array parameters decay to pointers.
			ptrs = append(ptrs, "*")
		default:
			return w.opaqueParam(n)
		}
		d = d.ChildByFieldName("declarator")
	}
	return &ast.Node{Kind: ast.KindParmDecl, Type: withPointers(base, ptrs)}
}

// opaqueParam handles declarators the walk does not model, such as
// function pointers: the type is the parameter text without its name.
func (w tsWalker) opaqueParam(n *sitter.Node) *ast.Node {
	id := findIdentifier(n.ChildByFieldName("declarator"))
	if id == nil {
		return &ast.Node{Kind: ast.KindParmDecl, Type: w.text(n)}
	}
	content := n.Content(w.src)
	start := int(id.StartByte() - n.StartByte())
	end := int(id.EndByte() - n.StartByte())
	typ := strings.Join(strings.Fields(content[:start]+content[end:]), " ")
	return &ast.Node{Kind: ast.KindParmDecl, Spelling: id.Content(w.src), Type: typ}
}

func findIdentifier(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.Type() == "identifier" {
		return n
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if id := findIdentifier(n.NamedChild(i)); id != nil {
			return id
		}
	}
	return nil
}
