package render

import (
	"fmt"
	"strings"
)

type node interface {
	isNode()
}

type textNode struct {
	text string
}

type outputNode struct {
	value expr
	raw   bool
}

type eachNode struct {
	source expr
	body   []node
}

func (textNode) isNode()   {}
func (outputNode) isNode() {}
func (eachNode) isNode()   {}

// parse builds the node tree for src, rejecting unknown blocks, unknown
// helpers and unbalanced each blocks.
func parse(src string, helpers *Helpers) ([]node, error) {
	tokens, err := lex(src)
	if err != nil {
		return nil, err
	}

	type frame struct {
		each  *eachNode
		open  token
		nodes []node
	}
	stack := []*frame{{}}
	current := func() *frame { return stack[len(stack)-1] }

	for _, tok := range tokens {
		switch tok.kind {
		case tokenText:
			current().nodes = append(current().nodes, textNode{text: tok.value})
			continue
		case tokenRawTag:
			value, err := parseChecked(tok, tok.value, helpers)
			if err != nil {
				return nil, err
			}
			current().nodes = append(current().nodes, outputNode{value: value, raw: true})
			continue
		}

		switch {
		case strings.HasPrefix(tok.value, "#"):
			name, rest := splitBlock(tok.value[1:])
			if name != "each" {
				return nil, compileErr(tok, fmt.Sprintf("unsupported block %q", name), nil)
			}
			if rest == "" {
				return nil, compileErr(tok, "each requires an argument", nil)
			}
			source, err := parseChecked(tok, rest, helpers)
			if err != nil {
				return nil, err
			}
			stack = append(stack, &frame{each: &eachNode{source: source}, open: tok})

		case strings.HasPrefix(tok.value, "/"):
			name := strings.TrimSpace(tok.value[1:])
			if len(stack) == 1 {
				return nil, compileErr(tok, fmt.Sprintf("unexpected closing tag {{/%s}}", name), nil)
			}
			top := current()
			if name != "each" {
				return nil, compileErr(tok, fmt.Sprintf("mismatched closing tag {{/%s}}, expected {{/each}}", name), nil)
			}
			top.each.body = top.nodes
			stack = stack[:len(stack)-1]
			current().nodes = append(current().nodes, *top.each)

		case strings.HasPrefix(tok.value, "&"):
			value, err := parseChecked(tok, strings.TrimSpace(tok.value[1:]), helpers)
			if err != nil {
				return nil, err
			}
			current().nodes = append(current().nodes, outputNode{value: value, raw: true})

		case strings.HasPrefix(tok.value, ">"), strings.HasPrefix(tok.value, "^"), tok.value == "else":
			return nil, compileErr(tok, fmt.Sprintf("unsupported tag {{%s}}", tok.value), nil)

		default:
			value, err := parseChecked(tok, tok.value, helpers)
			if err != nil {
				return nil, err
			}
			current().nodes = append(current().nodes, outputNode{value: value})
		}
	}

	if len(stack) > 1 {
		return nil, compileErr(current().open, "unclosed {{#each}} block", nil)
	}
	return stack[0].nodes, nil
}

func parseChecked(tok token, src string, helpers *Helpers) (expr, error) {
	value, err := parseExpression(src)
	if err != nil {
		return nil, compileErr(tok, err.Error(), nil)
	}
	if err := checkHelpers(value, helpers); err != nil {
		return nil, compileErr(tok, err.Error(), ErrUnknownHelper)
	}
	return value, nil
}

func checkHelpers(e expr, helpers *Helpers) error {
	call, ok := e.(callExpr)
	if !ok {
		return nil
	}
	if _, found := helpers.Lookup(call.helper); !found {
		return fmt.Errorf("unknown helper %q", call.helper)
	}
	for _, arg := range call.args {
		if err := checkHelpers(arg, helpers); err != nil {
			return err
		}
	}
	return nil
}

func splitBlock(body string) (string, string) {
	body = strings.TrimSpace(body)
	name, rest, _ := strings.Cut(body, " ")
	return name, strings.TrimSpace(rest)
}

func compileErr(tok token, msg string, cause error) *CompileError {
	return &CompileError{Line: tok.line, Column: tok.column, Message: msg, Err: cause}
}
