package cparse

import (
	"bytes"
	"strings"
)

// cxxCondition reports whether a conditional directive tests __cplusplus
// and, if so, whether its first branch survives a C compile.
func cxxCondition(keyword, expr string) (known, taken bool) {
	expr = strings.Join(strings.Fields(expr), "")
	switch keyword {
	case "ifdef":
		return expr == "__cplusplus", false
	case "ifndef":
		return expr == "__cplusplus", true
	case "if":
		switch expr {
		case "defined(__cplusplus)", "defined__cplusplus", "__cplusplus":
			return true, false
		case "!defined(__cplusplus)", "!defined__cplusplus", "!__cplusplus":
			return true, true
		}
	}
	return false, false
}

type condFrame struct {
	cxx    bool
	taken  bool
	done   bool // some branch has been taken
	parent bool
}

// stripCPlusPlus blanks the lines a C compiler skips because __cplusplus
// is undefined, along with the directives that test it. Other conditionals
// are left alone. Byte offsets and line numbers are preserved. An #elif in
// a __cplusplus conditional is treated as true.
func stripCPlusPlus(src []byte) []byte {
	if !bytes.Contains(src, []byte("__cplusplus")) {
		return src
	}
	out := bytes.Clone(src)
	var stack []condFrame
	active := true

	blank := func(line []byte) {
		for i, c := range line {
			if c != '\n' && c != '\r' {
				line[i] = ' '
			}
		}
	}

	for rest := out; len(rest) > 0; {
		end := bytes.IndexByte(rest, '\n') + 1
		if end == 0 {
			end = len(rest)
		}
		line := rest[:end]
		rest = rest[end:]

		keyword, expr := directive(string(line))
		switch keyword {
		case "if", "ifdef", "ifndef":
			known, taken := cxxCondition(keyword, expr)
			stack = append(stack, condFrame{cxx: known, taken: taken, done: taken, parent: active})
			if known {
				blank(line)
				active = active && taken
				continue
			}
		case "elif", "else":
			if n := len(stack); n > 0 && stack[n-1].cxx {
				top := &stack[n-1]
				top.taken = !top.done
				top.done = true
				active = top.parent && top.taken
				blank(line)
				continue
			}
		case "endif":
			if n := len(stack); n > 0 {
				top := stack[n-1]
				stack = stack[:n-1]
				if top.cxx {
					active = top.parent
					blank(line)
					continue
				}
			}
		}
		if !active {
			blank(line)
		}
	}
	return out
}

// directive splits a preprocessor line into its keyword and the rest.
func directive(line string) (keyword, rest string) {
	s := strings.TrimSpace(line)
	if !strings.HasPrefix(s, "#") {
		return "", ""
	}
	s = strings.TrimSpace(s[1:])
	keyword, rest, _ = strings.Cut(s, " ")
	if i := strings.IndexAny(keyword, "\t("); i != -1 {
		keyword, rest = keyword[:i], keyword[i:]+" "+rest
	}
	if i := strings.Index(rest, "//"); i != -1 {
		rest = rest[:i]
	}
	if i := strings.Index(rest, "/*"); i != -1 {
		rest = rest[:i]
	}
	return keyword, strings.TrimSpace(rest)
}
