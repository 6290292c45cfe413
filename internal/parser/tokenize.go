package parser

import (
	"strings"
	"unicode"

	"github.com/chriserin/doctag/internal/diag"
	"github.com/chriserin/doctag/internal/source"
)

// Tokenize scans comment lines into tokens. Attribute payloads absorb the
// following plain lines until the next @-line. Malformed @-lines are skipped
// and reported; they never stop the scan.
func Tokenize(lines []source.Line) ([]Token, []diag.Diagnostic) {
	var tokens []Token
	var diags []diag.Diagnostic

	pending := -1 // index of the attribute still collecting continuation lines
	var cont []string
	flush := func() {
		if pending >= 0 {
			tokens[pending].Payload = strings.TrimSpace(strings.Join(cont, "\n"))
		}
		pending = -1
		cont = nil
	}

	for _, l := range lines {
		text := strings.TrimRight(l.Text, " \t\r")
		trimmed := strings.TrimLeft(text, " \t")
		offset := l.Offset + len(text) - len(trimmed)

		if !strings.HasPrefix(trimmed, "@") {
			if pending >= 0 {
				cont = append(cont, trimmed)
				continue
			}
			if trimmed != "" {
				tokens = append(tokens, Token{Kind: Text, Payload: trimmed, Offset: offset})
			}
			continue
		}

		flush()
		toks, ds := scanTagLine(trimmed, offset)
		diags = append(diags, ds...)
		tokens = append(tokens, toks...)
		if n := len(toks); n > 0 && toks[n-1].Kind == AttributeLine {
			pending = len(tokens) - 1
			cont = []string{tokens[pending].Payload}
		}
	}
	flush()

	return tokens, diags
}

// scanTagLine handles a trimmed line starting with '@'. An opener or closer
// may be followed on the same line by another tag, which is scanned in turn,
// or by plain text.
func scanTagLine(line string, offset int) ([]Token, []diag.Diagnostic) {
	var toks []Token
	var diags []diag.Diagnostic
	for {
		kind := bracketKind(line)
		if kind == 0 {
			tok, d, ok := scanAttribute(line, offset)
			if ok {
				toks = append(toks, tok)
			} else {
				diags = append(diags, d)
			}
			return toks, diags
		}

		name, rest, restOff := cutWord(line[2:])
		if name == "" && (kind == OpenBrace || kind == OpenBracket) {
			diags = append(diags, diag.Errorf(diag.MalformedAttribute, offset, "%s opens a tag without a name", line[:2]))
		}
		toks = append(toks, Token{Kind: kind, Name: name, Offset: offset})

		restOffset := offset + 2 + restOff
		if strings.HasPrefix(rest, "@") {
			line, offset = rest, restOffset
			continue
		}
		if rest != "" {
			toks = append(toks, Token{Kind: Text, Payload: rest, Offset: restOffset})
		}
		return toks, diags
	}
}

func bracketKind(line string) TokenKind {
	if len(line) < 2 {
		return 0
	}
	switch line[1] {
	case '{':
		return OpenBrace
	case '}':
		return CloseBrace
	case '[':
		return OpenBracket
	case ']':
		return CloseBracket
	}
	return 0
}

func scanAttribute(line string, offset int) (Token, diag.Diagnostic, bool) {
	if len(line) >= 2 && line[1] == '^' {
		return scanCaret(line, offset)
	}
	name := identPrefix(line[1:])
	if name == "" || !endsWord(line[1+len(name):]) {
		return Token{}, diag.Errorf(diag.MalformedAttribute, offset, "attribute line %q has no recognizable name", line), false
	}
	payload := strings.TrimSpace(line[1+len(name):])
	return Token{Kind: AttributeLine, Name: name, Payload: payload, Offset: offset}, diag.Diagnostic{}, true
}

func scanCaret(line string, offset int) (Token, diag.Diagnostic, bool) {
	rest := line[2:]
	name := identPrefix(rest)
	if name == "" || !endsWord(rest[len(name):]) {
		return Token{}, diag.Errorf(diag.MalformedAttribute, offset, "two-part attribute %q has no recognizable label", line), false
	}
	payload := strings.TrimSpace(rest[len(name):])
	return Token{Kind: AttributeLine, Name: name, Payload: payload, Caret: true, Offset: offset}, diag.Diagnostic{}, true
}

// cutWord splits s into its first whitespace-delimited word and the trimmed
// remainder. restOff is the remainder's offset within s.
func cutWord(s string) (word, rest string, restOff int) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, "", len(s)
	}
	word = s[:i]
	tail := s[i:]
	rest = strings.TrimLeftFunc(tail, unicode.IsSpace)
	return word, rest, len(s) - len(rest)
}

func identPrefix(s string) string {
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return s[:i]
	}
	return s
}

func endsWord(s string) bool {
	return s == "" || unicode.IsSpace(rune(s[0]))
}
