package lexer

import (
	"sort"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"
)

// tokenPattern is the unified matcher run over non-directive text. The
// alternatives are ordered by priority: comments first so "/*" can never be
// read as operators, then literals, then words, then operators with the
// longest forms ahead of their prefixes ("<<=" before "<<" before "<").
var tokenPattern = regexp2.MustCompile(
	`(?<comment>//[^\n]*|/\*[\s\S]*?\*/)`+
		`|(?<str>"(?:\\.|[^"\\\n])*")`+
		`|(?<chr>'(?:\\.|[^'\\])*')`+
		`|(?<num>0[xX][0-9a-fA-F]+|[0-9]+\.[0-9]+|[0-9]+)`+
		`|(?<word>[A-Za-z_][A-Za-z0-9_]*)`+
		`|(?<op><<=|>>=|\.\.\.|->|\+\+|--|<<|>>|<=|>=|==|!=|&&|\|\||\+=|-=|\*=|/=|%=|&=|\|=|\^=|[-+*/%<>=!&|^~?:;,.(){}\[\]#])`,
	regexp2.None)

// span is a claimed [start, end) rune range. Matches falling inside a
// claimed span are skipped so directive arguments are never emitted twice.
type span struct {
	start, end int
}

func (s span) contains(offset int) bool {
	return offset >= s.start && offset < s.end
}

// posToken pairs a token with its absolute rune offset so the directive pass
// and the pattern pass can be merged into one positionally ordered stream.
type posToken struct {
	offset int
	tok    Token
}

type scanner struct {
	src      []rune
	newlines []int // rune offsets of every '\n'
	claimed  []span
	comments []span // block-comment ranges, so commented-out directives stay dead
	out      []posToken
	covered  []bool // runes accounted for by a span, match, or whitespace
}

// Lex turns source text into an ordered token list. No input is rejected:
// unrecognized characters are dropped and lexing continues.
func Lex(src string) []Token {
	return LexWithDiagnostics(src, nil)
}

// LexWithDiagnostics is Lex with a reporter that receives each maximal run
// of dropped characters together with its source line.
func LexWithDiagnostics(src string, onDrop func(line int, text string)) []Token {
	s := &scanner{src: []rune(src)}
	s.covered = make([]bool, len(s.src))
	for i, r := range s.src {
		if r == '\n' {
			s.newlines = append(s.newlines, i)
		}
		if unicode.IsSpace(r) {
			s.covered[i] = true
		}
	}

	s.comments = blockCommentSpans(s.src)
	s.scanDirectives()
	s.scanPattern(src)

	sort.Slice(s.out, func(i, j int) bool { return s.out[i].offset < s.out[j].offset })

	tokens := make([]Token, 0, len(s.out))
	for _, pt := range s.out {
		tok := pt.tok
		tok.Line, tok.Column = s.position(pt.offset)
		tokens = append(tokens, tok)
	}

	if onDrop != nil {
		s.reportDropped(onDrop)
	}
	return tokens
}

// position converts a rune offset to a 1-based (line, column) pair using the
// precomputed newline table.
func (s *scanner) position(offset int) (line, column int) {
	idx := sort.SearchInts(s.newlines, offset)
	lineStart := 0
	if idx > 0 {
		lineStart = s.newlines[idx-1] + 1
	}
	return idx + 1, offset - lineStart + 1
}

func (s *scanner) emit(offset int, kind Kind, text string) {
	s.out = append(s.out, posToken{offset: offset, tok: Token{Kind: kind, Text: text}})
}

func (s *scanner) claim(start, end int) {
	s.claimed = append(s.claimed, span{start: start, end: end})
	for i := start; i < end && i < len(s.covered); i++ {
		s.covered[i] = true
	}
}

func (s *scanner) inClaimed(offset int) bool {
	for _, sp := range s.claimed {
		if sp.contains(offset) {
			return true
		}
	}
	return false
}

func (s *scanner) inComment(offset int) bool {
	for _, sp := range s.comments {
		if sp.contains(offset) {
			return true
		}
	}
	return false
}

// blockCommentSpans locates every /* */ range before the directive pre-scan
// runs, skipping comment markers inside string and character literals.
// Literal scanning stops at a newline so a stray quote cannot swallow the
// rest of the file.
func blockCommentSpans(src []rune) []span {
	var spans []span
	i := 0
	for i < len(src)-1 {
		switch src[i] {
		case '"', '\'':
			q := src[i]
			i++
			for i < len(src) && src[i] != q && src[i] != '\n' {
				if src[i] == '\\' {
					i++
				}
				i++
			}
			i++
		case '/':
			switch src[i+1] {
			case '*':
				start := i
				i += 2
				for i < len(src)-1 && !(src[i] == '*' && src[i+1] == '/') {
					i++
				}
				end := len(src)
				if i < len(src)-1 {
					end = i + 2
				}
				spans = append(spans, span{start: start, end: end})
				i = end
			case '/':
				for i < len(src) && src[i] != '\n' {
					i++
				}
			default:
				i++
			}
		default:
			i++
		}
	}
	return spans
}

// scanDirectives pre-scans for preprocessor lines (first non-whitespace rune
// is '#'), claims each directive's exact span, and emits the command token
// plus the nested argument tokens for #include and #define.
func (s *scanner) scanDirectives() {
	lineStart := 0
	for lineStart <= len(s.src) {
		lineEnd := lineStart
		for lineEnd < len(s.src) && s.src[lineEnd] != '\n' {
			lineEnd++
		}

		indent := lineStart
		for indent < lineEnd && unicode.IsSpace(s.src[indent]) {
			indent++
		}

		if indent < lineEnd && s.src[indent] == '#' && !s.inComment(indent) {
			s.claim(indent, lineEnd)
			s.emitDirective(indent, lineEnd)
		}

		lineStart = lineEnd + 1
	}
}

// emitDirective tokenizes one claimed directive span [start, end).
func (s *scanner) emitDirective(start, end int) {
	// Command word: '#' plus the immediately following letters.
	cmdEnd := start + 1
	for cmdEnd < end && (unicode.IsLetter(s.src[cmdEnd]) || s.src[cmdEnd] == '_') {
		cmdEnd++
	}
	command := string(s.src[start:cmdEnd])
	s.emit(start, KindPreprocessor, command)

	rest := cmdEnd
	for rest < end && unicode.IsSpace(s.src[rest]) {
		rest++
	}

	switch command {
	case "#include":
		// The whole remainder is the filename, e.g. <stdio.h> or "vec.h".
		argEnd := end
		for argEnd > rest && unicode.IsSpace(s.src[argEnd-1]) {
			argEnd--
		}
		if argEnd > rest {
			s.emit(rest, KindLiteral, string(s.src[rest:argEnd]))
		}
	case "#define":
		// Macro name, then its replacement text.
		nameEnd := rest
		for nameEnd < end {
			r := s.src[nameEnd]
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
				break
			}
			nameEnd++
		}
		if nameEnd > rest {
			s.emit(rest, KindIdentifier, string(s.src[rest:nameEnd]))
		}
		valStart := nameEnd
		for valStart < end && unicode.IsSpace(s.src[valStart]) {
			valStart++
		}
		valEnd := end
		for valEnd > valStart && unicode.IsSpace(s.src[valEnd-1]) {
			valEnd--
		}
		if valEnd > valStart {
			s.emit(valStart, KindLiteral, string(s.src[valStart:valEnd]))
		}
	}
}

// scanPattern runs the unified matcher over the source, skipping matches
// whose start falls inside an already-claimed directive span.
func (s *scanner) scanPattern(src string) {
	m, err := tokenPattern.FindStringMatch(src)
	for err == nil && m != nil {
		s.classifyMatch(m)
		m, err = tokenPattern.FindNextMatch(m)
	}
}

func (s *scanner) classifyMatch(m *regexp2.Match) {
	if s.inClaimed(m.Index) {
		return
	}
	// Discarded or emitted, the matched span is accounted for either way.
	for i := m.Index; i < m.Index+m.Length && i < len(s.covered); i++ {
		s.covered[i] = true
	}

	if groupMatched(m, "comment") {
		return
	}
	text := m.String()
	switch {
	case groupMatched(m, "str"), groupMatched(m, "chr"), groupMatched(m, "num"):
		s.emit(m.Index, KindLiteral, text)
	case groupMatched(m, "word"):
		s.emit(m.Index, classifyWord(text), text)
	default:
		kind := KindOperator
		if punctuation[text] {
			kind = KindPunctuation
		}
		s.emit(m.Index, kind, text)
	}
}

func groupMatched(m *regexp2.Match, name string) bool {
	g := m.GroupByName(name)
	return g != nil && len(g.Captures) > 0
}

// reportDropped invokes onDrop once per maximal run of runes that no span,
// match, or whitespace accounted for.
func (s *scanner) reportDropped(onDrop func(line int, text string)) {
	i := 0
	for i < len(s.src) {
		if s.covered[i] {
			i++
			continue
		}
		start := i
		for i < len(s.src) && !s.covered[i] {
			i++
		}
		line, _ := s.position(start)
		onDrop(line, strings.TrimSpace(string(s.src[start:i])))
	}
}

// MaxLine returns the highest line number among tokens, or 1 for an empty
// list. The trace generator stamps its finalization step with it.
func MaxLine(tokens []Token) int {
	max := 1
	for _, t := range tokens {
		if t.Line > max {
			max = t.Line
		}
	}
	return max
}
