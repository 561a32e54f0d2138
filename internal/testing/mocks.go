package testing

import (
	"context"
	"sync"
	"testing"

	"github.com/ssfrr/embody/internal/codegen/ast"
)

// Confirmer answers prompts from a fixed script and records every prompt.
// Once the script runs out each prompt gets its default answer.
type Confirmer struct {
	mu      sync.Mutex
	answers []bool
	Prompts []string
}

func NewConfirmer(answers ...bool) *Confirmer {
	return &Confirmer{answers: answers}
}

func (c *Confirmer) Confirm(prompt string, def bool) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Prompts = append(c.Prompts, prompt)
	if len(c.answers) == 0 {
		return def, nil
	}
	a := c.answers[0]
	c.answers = c.answers[1:]
	return a, nil
}

// Parser returns a fixed translation unit and remembers what it was asked
// to parse.
type Parser struct {
	TU  *ast.TranslationUnit
	Err error

	Calls []ParseCall
}

type ParseCall struct {
	Path string
	Args []string
}

func (p *Parser) Parse(_ context.Context, path string, args []string) (*ast.TranslationUnit, error) {
	p.Calls = append(p.Calls, ParseCall{Path: path, Args: args})
	if p.Err != nil {
		return nil, p.Err
	}
	if p.TU == nil {
		return &ast.TranslationUnit{Path: path}, nil
	}
	tu := *p.TU
	tu.Path = path
	return &tu, nil
}

// CreateStaticParser returns a Parser that yields one function declaration
// per name, each returning void and taking no parameters.
func CreateStaticParser(t *testing.T, names ...string) *Parser {
	t.Helper()
	tu := &ast.TranslationUnit{}
	for _, n := range names {
		tu.Children = append(tu.Children, &ast.Node{Kind: ast.KindFunctionDecl, Spelling: n})
	}
	return &Parser{TU: tu}
}
