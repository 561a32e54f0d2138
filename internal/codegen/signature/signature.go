// Package signature turns parsed C declarations into function signatures
// that can be rendered back out as call-compatible stubs.
package signature

import (
	"fmt"
	"strings"

	"github.com/ssfrr/embody/internal/apperror"
	"github.com/ssfrr/embody/internal/codegen/ast"
)

const defaultReturnType = "void"

// Param is one (type, name) pair of a function declaration. Name may be
// empty for unnamed parameters.
type Param struct {
	Type string
	Name string
}

// FunctionSignature is one extracted C function declaration.
type FunctionSignature struct {
	Name       string
	ReturnType string
	Params     []Param
}

// FromNode builds a signature from a function declaration node. Any other
// node kind fails with apperror.ErrInvalidDeclaration.
func FromNode(n *ast.Node) (FunctionSignature, error) {
	if n == nil {
		return FunctionSignature{}, fmt.Errorf("%w: nil node", apperror.ErrInvalidDeclaration)
	}
	if n.Kind != ast.KindFunctionDecl {
		return FunctionSignature{}, fmt.Errorf("%w: node kind was %s instead of %s",
			apperror.ErrInvalidDeclaration, n.Kind, ast.KindFunctionDecl)
	}
	if n.Spelling == "" {
		return FunctionSignature{}, fmt.Errorf("%w: function declaration without a name", apperror.ErrInvalidDeclaration)
	}

	sig := FunctionSignature{Name: n.Spelling}
	for _, child := range n.Children {
		switch child.Kind {
		case ast.KindTypeRef:
			if sig.ReturnType == "" {
				sig.ReturnType = child.Spelling
			}
		case ast.KindParmDecl:
			sig.Params = append(sig.Params, Param{Type: child.Type, Name: child.Spelling})
		}
	}
	if sig.ReturnType == "" {
		sig.ReturnType = n.Type
	}
	if sig.ReturnType == "" {
		sig.ReturnType = defaultReturnType
	}
	return sig, nil
}

// Extract returns one signature per function declaration of tu, in the
// order they were declared. Other nodes are skipped.
func Extract(tu *ast.TranslationUnit) ([]FunctionSignature, error) {
	if tu.Empty() {
		path := ""
		if tu != nil {
			path = tu.Path
		}
		return nil, fmt.Errorf("%w: %q produced no declarations", apperror.ErrEmptyTranslationUnit, path)
	}

	var sigs []FunctionSignature
	for _, n := range tu.Children {
		if n.Kind != ast.KindFunctionDecl {
			continue
		}
		sig, err := FromNode(n)
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, sig)
	}
	return sigs, nil
}

// Prototype renders the signature as a C prototype without the trailing
// semicolon, e.g. "void *something(void *thing)".
func (s FunctionSignature) Prototype() string {
	var b strings.Builder
	b.WriteString(joinDecl(s.ReturnType, s.Name))
	b.WriteByte('(')
	b.WriteString(s.ParamList())
	b.WriteByte(')')
	return b.String()
}

// ParamList renders the comma separated parameter list. A function without
// parameters renders as "void".
func (s FunctionSignature) ParamList() string {
	if len(s.Params) == 0 {
		return "void"
	}
	parts := make([]string, len(s.Params))
	for i, p := range s.Params {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

// String renders the parameter as it appears in a parameter list.
func (p Param) String() string {
	return joinDecl(p.Type, p.Name)
}

// joinDecl places name after typ, without a space when typ ends in '*'.
// For function pointer types such as "void (*)(int)" the name goes inside
// the abstract declarator: "void (*cb)(int)".
func joinDecl(typ, name string) string {
	if name == "" {
		return typ
	}
	if open := strings.Index(typ, "(*"); open != -1 {
		if end := strings.IndexByte(typ[open:], ')'); end != -1 {
			at := open + end
			sep := ""
			if typ[at-1] != '*' {
				sep = " "
			}
			return typ[:at] + sep + name + typ[at:]
		}
	}
	if strings.HasSuffix(typ, "*") {
		return typ + name
	}
	return typ + " " + name
}
