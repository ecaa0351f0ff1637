package render

import "strings"

type tokenKind uint8

const (
	tokenText tokenKind = iota
	tokenTag
	tokenRawTag
)

type token struct {
	kind   tokenKind
	value  string
	line   int
	column int
}

type delimiters struct {
	open, close string
	kind        tokenKind
	skip        bool
}

// Ordered so longer openers are tried first.
var tagForms = []delimiters{
	{open: "{{!--", close: "--}}", skip: true},
	{open: "{{!", close: "}}", skip: true},
	{open: "{{{", close: "}}}", kind: tokenRawTag},
	{open: "{{", close: "}}", kind: tokenTag},
}

// lex splits src into text and tag tokens. Comments are dropped.
func lex(src string) ([]token, error) {
	var (
		tokens []token
		pos    int
	)
	for pos < len(src) {
		start := strings.Index(src[pos:], "{{")
		if start < 0 {
			tokens = appendText(tokens, src, pos, len(src))
			break
		}
		start += pos
		tokens = appendText(tokens, src, pos, start)

		form := matchForm(src[start:])
		body := start + len(form.open)
		end := strings.Index(src[body:], form.close)
		if end < 0 {
			line, col := position(src, start)
			return nil, &CompileError{Line: line, Column: col, Message: "unterminated tag, missing " + form.close}
		}
		end += body
		if !form.skip {
			line, col := position(src, start)
			tokens = append(tokens, token{
				kind:   form.kind,
				value:  strings.TrimSpace(src[body:end]),
				line:   line,
				column: col,
			})
		}
		pos = end + len(form.close)
	}
	return tokens, nil
}

func matchForm(s string) delimiters {
	for _, form := range tagForms {
		if strings.HasPrefix(s, form.open) {
			return form
		}
	}
	return tagForms[len(tagForms)-1]
}

func appendText(tokens []token, src string, from, to int) []token {
	if from >= to {
		return tokens
	}
	line, col := position(src, from)
	return append(tokens, token{kind: tokenText, value: src[from:to], line: line, column: col})
}

func position(src string, offset int) (int, int) {
	line := 1 + strings.Count(src[:offset], "\n")
	col := offset + 1
	if nl := strings.LastIndexByte(src[:offset], '\n'); nl >= 0 {
		col = offset - nl
	}
	return line, col
}
