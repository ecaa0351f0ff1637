package render

import (
	"fmt"
	"strconv"
	"strings"
)

// expr is anything that evaluates to a value: a path, a literal or a helper call.
type expr interface {
	isExpr()
}

// pathExpr is a context lookup such as name, ../title, this.tags or @index.
type pathExpr struct {
	raw      string
	parents  int
	explicit bool
	data     string
	segments []string
}

type literalExpr struct {
	value any
}

type callExpr struct {
	helper string
	args   []expr
}

func (pathExpr) isExpr()    {}
func (literalExpr) isExpr() {}
func (callExpr) isExpr()    {}

// parseExpression parses the body of a tag. A bare sequence of words
// ("split tech ','") is treated as a helper call, as is a parenthesised one.
func parseExpression(src string) (expr, error) {
	words, err := splitWords(src)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("empty expression")
	}
	if len(words) == 1 {
		return parseTerm(words[0])
	}
	return buildCall(words)
}

func buildCall(words []string) (expr, error) {
	name := words[0]
	if strings.HasPrefix(name, "(") || isLiteral(name) {
		return nil, fmt.Errorf("helper name expected, got %s", name)
	}
	call := callExpr{helper: name}
	for _, word := range words[1:] {
		arg, err := parseTerm(word)
		if err != nil {
			return nil, err
		}
		call.args = append(call.args, arg)
	}
	return call, nil
}

func parseTerm(word string) (expr, error) {
	switch {
	case strings.HasPrefix(word, "("):
		if !strings.HasSuffix(word, ")") {
			return nil, fmt.Errorf("unbalanced parenthesis in %s", word)
		}
		inner, err := splitWords(word[1 : len(word)-1])
		if err != nil {
			return nil, err
		}
		if len(inner) == 0 {
			return nil, fmt.Errorf("empty sub-expression")
		}
		return buildCall(inner)
	case isQuoted(word):
		return literalExpr{value: word[1 : len(word)-1]}, nil
	case word == "true" || word == "false":
		return literalExpr{value: word == "true"}, nil
	case word == "null" || word == "undefined":
		return literalExpr{value: nil}, nil
	}
	if n, err := strconv.ParseFloat(word, 64); err == nil && looksNumeric(word) {
		return literalExpr{value: n}, nil
	}
	return parsePath(word)
}

func parsePath(raw string) (pathExpr, error) {
	p := pathExpr{raw: raw}
	rest := raw
	for strings.HasPrefix(rest, "../") {
		p.parents++
		rest = rest[3:]
	}
	if rest == ".." {
		p.parents++
		rest = ""
	}

	if strings.HasPrefix(rest, "@") {
		p.data = rest[1:]
		if p.data == "" {
			return p, fmt.Errorf("empty data variable in %s", raw)
		}
		return p, nil
	}

	switch {
	case rest == "this" || rest == "." || rest == "":
		p.explicit = true
		return p, nil
	case strings.HasPrefix(rest, "this."):
		p.explicit = true
		rest = rest[len("this."):]
	case strings.HasPrefix(rest, "./"):
		p.explicit = true
		rest = rest[2:]
	}

	for _, seg := range strings.Split(rest, ".") {
		if seg == "" || strings.ContainsAny(seg, "/(){}") {
			return p, fmt.Errorf("invalid path %s", raw)
		}
		p.segments = append(p.segments, seg)
	}
	return p, nil
}

// splitWords tokenizes an expression on whitespace, keeping quoted strings
// and parenthesised groups intact.
func splitWords(src string) ([]string, error) {
	var (
		words []string
		cur   strings.Builder
		depth int
		quote rune
	)
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for _, r := range src {
		switch {
		case quote != 0:
			cur.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
			cur.WriteRune(r)
		case r == '(':
			depth++
			cur.WriteRune(r)
		case r == ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unexpected )")
			}
			cur.WriteRune(r)
		case depth == 0 && (r == ' ' || r == '\t' || r == '\n' || r == '\r'):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated string literal")
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced parenthesis")
	}
	flush()
	return words, nil
}

func isQuoted(word string) bool {
	if len(word) < 2 {
		return false
	}
	first, last := word[0], word[len(word)-1]
	return (first == '\'' || first == '"') && first == last
}

func isLiteral(word string) bool {
	if isQuoted(word) {
		return true
	}
	_, err := strconv.ParseFloat(word, 64)
	return err == nil && looksNumeric(word)
}

func looksNumeric(word string) bool {
	c := word[0]
	return (c >= '0' && c <= '9') || c == '-' || c == '+'
}
