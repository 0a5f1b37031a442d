package markdown

import "strings"

type fence struct {
	char   byte
	length int
	indent int
}

// openFence reports whether line opens a fenced code block and returns the
// info string.
func openFence(line string) (fence, string, bool) {
	indent := 0
	for indent < len(line) && indent < 4 && line[indent] == ' ' {
		indent++
	}
	if indent > 3 || indent >= len(line) {
		return fence{}, "", false
	}
	ch := line[indent]
	if ch != '`' && ch != '~' {
		return fence{}, "", false
	}
	n := 0
	for indent+n < len(line) && line[indent+n] == ch {
		n++
	}
	if n < 3 {
		return fence{}, "", false
	}
	info := strings.TrimSpace(line[indent+n:])
	if ch == '`' && strings.Contains(info, "`") {
		return fence{}, "", false
	}
	return fence{char: ch, length: n, indent: indent}, info, true
}

func (f fence) closedBy(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return false
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == f.char {
		n++
	}
	return n >= f.length && strings.TrimSpace(trimmed[n:]) == ""
}

// content strips up to the fence's indentation from a code line.
func (f fence) content(line string) string {
	for i := 0; i < f.indent && strings.HasPrefix(line, " "); i++ {
		line = line[1:]
	}
	return line
}

func firstWord(info string) string {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
