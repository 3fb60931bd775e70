package audit

import "strings"

// StripComments removes line (//) and block (/* */) comments from
// Solidity-style source text. String literals are left intact so that
// comment markers inside strings do not truncate code. Line structure
// is preserved: stripped comment text is replaced by spaces and
// newlines survive, so line counts are unaffected.
func StripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))

	const (
		stateCode = iota
		stateLineComment
		stateBlockComment
		stateString
	)

	state := stateCode
	var quote byte

	for i := 0; i < len(source); i++ {
		c := source[i]

		switch state {
		case stateCode:
			if c == '/' && i+1 < len(source) && source[i+1] == '/' {
				state = stateLineComment
				i++
				sb.WriteString("  ")
				continue
			}
			if c == '/' && i+1 < len(source) && source[i+1] == '*' {
				state = stateBlockComment
				i++
				sb.WriteString("  ")
				continue
			}
			if c == '"' || c == '\'' {
				state = stateString
				quote = c
			}
			sb.WriteByte(c)

		case stateLineComment:
			if c == '\n' {
				state = stateCode
				sb.WriteByte(c)
			} else {
				sb.WriteByte(' ')
			}

		case stateBlockComment:
			if c == '*' && i+1 < len(source) && source[i+1] == '/' {
				state = stateCode
				i++
				sb.WriteString("  ")
				continue
			}
			if c == '\n' {
				sb.WriteByte('\n')
			} else {
				sb.WriteByte(' ')
			}

		case stateString:
			if c == '\\' && i+1 < len(source) {
				sb.WriteByte(c)
				i++
				sb.WriteByte(source[i])
				continue
			}
			if c == quote || c == '\n' {
				state = stateCode
			}
			sb.WriteByte(c)
		}
	}

	return sb.String()
}
