package handlers

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

var pyBlockKeywords = map[string]bool{
	"def": true, "class": true, "if": true, "elif": true, "else": true,
	"for": true, "while": true, "try": true, "except": true, "finally": true,
	"with": true, "async": true,
}

var pyPairs = map[rune]rune{')': '(', ']': '[', '}': '{'}

var pyBracketNames = map[rune]string{
	'(': "parenthesis", ')': "parenthesis",
	'[': "bracket", ']': "bracket",
	'{': "brace", '}': "brace",
}

type pyOpen struct {
	ch   rune
	line int
}

// pyLine is one logical line: physical lines joined while brackets, a
// trailing backslash or a triple-quoted string keep it open. Strings are
// blanked and comments removed.
type pyLine struct {
	num      int
	code     string
	indent   int
	topColon bool
}

// checkPython returns "" for source that passes the structural checks, or a
// message phrased like the interpreter's own SyntaxError text.
func checkPython(ctx context.Context, src string) (string, error) {
	lines, msg := scanPython(src)
	if msg != "" {
		return msg, nil
	}
	if msg := checkBlocks(lines); msg != "" {
		return msg, nil
	}
	return parsePython(ctx, src)
}

// scanPython tracks bracket nesting across the whole source.
func scanPython(src string) ([]pyLine, string) {
	var (
		stack []pyOpen
		out   []pyLine
		quote string
		cur   *pyLine
		code  strings.Builder
	)
	for i, raw := range strings.Split(src, "\n") {
		num := i + 1
		if cur == nil {
			cur = &pyLine{num: num, indent: indentWidth(raw)}
			code.Reset()
		}
		rs := []rune(raw)
		for j := 0; j < len(rs); j++ {
			c := rs[j]
			if quote != "" {
				if c == '\\' {
					j++
					continue
				}
				if strings.HasPrefix(string(rs[j:]), quote) {
					j += len(quote) - 1
					quote = ""
					code.WriteString("s")
				}
				continue
			}
			switch {
			case c == '#':
				j = len(rs)
				continue
			case c == '"' || c == '\'':
				q := string(c)
				if strings.HasPrefix(string(rs[j:]), strings.Repeat(q, 3)) {
					q = strings.Repeat(q, 3)
				}
				quote = q
				j += len(q) - 1
				continue
			case c == '(' || c == '[' || c == '{':
				stack = append(stack, pyOpen{ch: c, line: num})
			case c == ')' || c == ']' || c == '}':
				if len(stack) == 0 {
					return nil, fmt.Sprintf("unmatched '%c' (line %d)", c, num)
				}
				top := stack[len(stack)-1]
				if top.ch != pyPairs[c] {
					return nil, fmt.Sprintf("closing %s '%c' does not match opening %s '%c' (line %d)",
						pyBracketNames[c], c, pyBracketNames[top.ch], top.ch, num)
				}
				stack = stack[:len(stack)-1]
			case c == ':' && len(stack) == 0:
				cur.topColon = true
			}
			code.WriteRune(c)
		}
		// single-quoted strings only continue past a trailing backslash
		if len(quote) == 1 && !strings.HasSuffix(raw, "\\") {
			return nil, fmt.Sprintf("unterminated string literal (line %d)", num)
		}
		code.WriteString(" ")

		joined := strings.TrimSpace(code.String())
		if len(stack) > 0 || quote != "" || strings.HasSuffix(joined, "\\") {
			continue
		}
		cur.code = joined
		out = append(out, *cur)
		cur = nil
	}
	if len(stack) > 0 {
		open := stack[len(stack)-1]
		return nil, fmt.Sprintf("'%c' was never closed (line %d)", open.ch, open.line)
	}
	if quote != "" {
		return nil, fmt.Sprintf("unterminated triple-quoted string literal (line %d)", cur.num)
	}
	return out, ""
}

// checkBlocks verifies block headers end in a colon and indentation follows
// them. Every dedent must return to an enclosing level.
func checkBlocks(lines []pyLine) string {
	levels := []int{0}
	opened := false
	for _, ln := range lines {
		if ln.code == "" {
			continue
		}
		top := levels[len(levels)-1]
		switch {
		case opened && ln.indent <= top:
			return fmt.Sprintf("expected an indented block (line %d)", ln.num)
		case opened:
			levels = append(levels, ln.indent)
		case ln.indent > top:
			return fmt.Sprintf("unexpected indent (line %d)", ln.num)
		case ln.indent < top:
			for len(levels) > 1 && levels[len(levels)-1] > ln.indent {
				levels = levels[:len(levels)-1]
			}
			if levels[len(levels)-1] != ln.indent {
				return fmt.Sprintf("unindent does not match any outer indentation level (line %d)", ln.num)
			}
		}

		kw := strings.FieldsFunc(ln.code, func(r rune) bool {
			return r == ' ' || r == '\t' || r == ':' || r == '('
		})
		if len(kw) > 0 && pyBlockKeywords[kw[0]] && !ln.topColon {
			return fmt.Sprintf("expected ':' (line %d)", ln.num)
		}
		opened = ln.topColon && strings.HasSuffix(ln.code, ":")
	}
	if opened {
		return "expected an indented block at end of input"
	}
	return ""
}

func indentWidth(s string) int {
	n := 0
	for _, c := range s {
		switch c {
		case ' ':
			n++
		case '\t':
			n += 8 - n%8
		default:
			return n
		}
	}
	return 0
}

// parsePython runs the tree-sitter grammar and reports the first error node.
func parsePython(ctx context.Context, src string) (string, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, []byte(src))
	if err != nil {
		return "", fmt.Errorf("parse python: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return "", nil
	}
	if n := firstErrorNode(root); n != nil {
		line := int(n.StartPoint().Row) + 1
		if n.IsMissing() {
			return fmt.Sprintf("expected '%s' (line %d)", n.Type(), line), nil
		}
		return fmt.Sprintf("invalid syntax (line %d)", line), nil
	}
	return "invalid syntax", nil
}

func firstErrorNode(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == nil || !(c.HasError() || c.IsMissing()) {
			continue
		}
		if found := firstErrorNode(c); found != nil {
			return found
		}
	}
	return nil
}
