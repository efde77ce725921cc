package xasm

import "strings"

// token is a slice of a source line carrying its own column offset, so
// that any error raised while consuming it can point a caret at the exact
// offending column without the caller re-deriving position from scratch.
type token struct {
	line   int
	column int // 0-based offset into the original source line
	full   string
	str    string
}

func newToken(line int, text string) token {
	return token{line: line, column: 0, full: text, str: text}
}

func (t token) isEmpty() bool { return len(t.str) == 0 }

func (t token) startsWithChar(c byte) bool {
	return len(t.str) > 0 && t.str[0] == c
}

func (t token) startsWithString(s string) bool {
	return strings.HasPrefix(t.str, s)
}

func (t token) startsWith(class func(byte) bool) bool {
	return len(t.str) > 0 && class(t.str[0])
}

// consume drops n bytes from the front, advancing the column.
func (t token) consume(n int) token {
	if n > len(t.str) {
		n = len(t.str)
	}
	t.column += n
	t.str = t.str[n:]
	return t
}

func (t token) consumeWhitespace() token {
	i := 0
	for i < len(t.str) && isSpace(t.str[i]) {
		i++
	}
	return t.consume(i)
}

// consumeWhile splits off the longest prefix matching class.
func (t token) consumeWhile(class func(byte) bool) (head, remain token) {
	i := 0
	for i < len(t.str) && class(t.str[i]) {
		i++
	}
	head = t
	head.str = t.str[:i]
	remain = t.consume(i)
	return head, remain
}

// consumeUntil splits off the longest prefix not matching stop.
func (t token) consumeUntil(stop func(byte) bool) (head, remain token) {
	i := 0
	for i < len(t.str) && !stop(t.str[i]) {
		i++
	}
	head = t
	head.str = t.str[:i]
	remain = t.consume(i)
	return head, remain
}

func (t token) consumeUntilChar(c byte) (head, remain token) {
	return t.consumeUntil(func(b byte) bool { return b == c })
}

func isSpace(c byte) bool      { return c == ' ' || c == '\t' }
func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isHexDigit(c byte) bool   { return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') }
func isOctalDigit(c byte) bool { return c >= '0' && c <= '7' }
func isBinaryDigit(c byte) bool {
	return c == '0' || c == '1' || c == '.' || c == '*'
}
func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
func isIdentChar(c byte) bool {
	return isAlpha(c) || isDigit(c) || c == '_' || c == '.' || c == '$'
}
func isIdentStart(c byte) bool {
	return isAlpha(c) || c == '_' || c == '.'
}

// stripComment removes a `;` to end-of-line comment, respecting quoted
// string and character literals so a `;` inside one is not mistaken for a
// comment marker.
func stripComment(line string) string {
	inStr, inChr := false, false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			if !inChr {
				inStr = !inStr
			}
		case '\'':
			if !inStr {
				inChr = !inChr
			}
		case ';':
			if !inStr && !inChr {
				return line[:i]
			}
		}
	}
	return line
}
