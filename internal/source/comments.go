package source

import "strings"

// Comments extracts the text of every `//`, `///`, `/* */` and `/** */`
// comment in content. Block comments nest, string literals are skipped,
// and a leading "*" decoration on block comment lines is removed.
func Comments(content string) []Line {
	var out []Line
	i := 0
	for i < len(content) {
		switch {
		case strings.HasPrefix(content[i:], `"""`):
			i = skipString(content, i+3, `"""`)
		case content[i] == '"':
			i = skipString(content, i+1, `"`)
		case strings.HasPrefix(content[i:], "//"):
			start := i + 2
			for start < len(content) && content[start] == '/' {
				start++
			}
			end := strings.IndexByte(content[start:], '\n')
			if end < 0 {
				end = len(content)
			} else {
				end += start
			}
			out = append(out, Line{Text: strings.TrimSuffix(content[start:end], "\r"), Offset: start})
			i = end
		case strings.HasPrefix(content[i:], "/*"):
			start := i + 2
			if strings.HasPrefix(content[start:], "*") && !strings.HasPrefix(content[start:], "*/") {
				start++
			}
			end, next := blockEnd(content, start)
			out = append(out, blockLines(content[start:end], start)...)
			i = next
		default:
			i++
		}
	}
	return out
}

func skipString(content string, i int, closer string) int {
	for i < len(content) {
		if content[i] == '\\' {
			i += 2
			continue
		}
		if strings.HasPrefix(content[i:], closer) {
			return i + len(closer)
		}
		if closer == `"` && content[i] == '\n' {
			return i
		}
		i++
	}
	return len(content)
}

// blockEnd finds the `*/` closing the block comment whose body starts at i.
// It returns the end of the body and the index just past the closer.
func blockEnd(content string, i int) (end, next int) {
	depth := 1
	for i < len(content) {
		switch {
		case strings.HasPrefix(content[i:], "/*"):
			depth++
			i += 2
		case strings.HasPrefix(content[i:], "*/"):
			depth--
			if depth == 0 {
				return i, i + 2
			}
			i += 2
		default:
			i++
		}
	}
	return len(content), len(content)
}

func blockLines(body string, base int) []Line {
	lines := Lines(body, base)
	for i, l := range lines {
		trimmed := strings.TrimLeft(l.Text, " \t")
		if strings.HasPrefix(trimmed, "*") {
			cut := len(l.Text) - len(trimmed) + 1
			if strings.HasPrefix(l.Text[cut:], " ") {
				cut++
			}
			lines[i] = Line{Text: l.Text[cut:], Offset: l.Offset + cut}
		}
	}
	return lines
}
