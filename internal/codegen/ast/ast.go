// Package ast defines the declaration tree every C parsing backend produces.
//
// Backends translate their own node kinds into this shape so that signature
// extraction never depends on a particular parser.
package ast

// Kind classifies a Node.
type Kind int

const (
	KindOther Kind = iota
	KindTranslationUnit
	KindFunctionDecl
	KindTypeRef
	KindParmDecl
)

func (k Kind) String() string {
	switch k {
	case KindTranslationUnit:
		return "TRANSLATION_UNIT"
	case KindFunctionDecl:
		return "FUNCTION_DECL"
	case KindTypeRef:
		return "TYPE_REF"
	case KindParmDecl:
		return "PARM_DECL"
	default:
		return "OTHER"
	}
}

// Node is one declaration-level element of a parsed header.
type Node struct {
	Kind Kind
	// Spelling is the identifier of the node. For a TypeRef it is the
	// referenced type as written.
	Spelling string
	// Type is the typed declarator field: the result type of a function
	// declaration or the type of a parameter, when the backend knows it.
	Type     string
	Children []*Node
}

// TranslationUnit is the root of a parsed header.
type TranslationUnit struct {
	Path     string
	Children []*Node
}

// Empty reports whether parsing produced no top-level nodes at all.
func (tu *TranslationUnit) Empty() bool {
	return tu == nil || len(tu.Children) == 0
}

// Functions returns the top-level function declarations in source order.
func (tu *TranslationUnit) Functions() []*Node {
	if tu == nil {
		return nil
	}
	var out []*Node
	for _, n := range tu.Children {
		if n.Kind == KindFunctionDecl {
			out = append(out, n)
		}
	}
	return out
}
