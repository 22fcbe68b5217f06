package lexer

import "fmt"

// Kind identifies the lexical category of a token.
type Kind int

const (
	KindKeyword Kind = iota // reserved word: int, if, while, sizeof, ...
	KindIdentifier
	KindFunction // fixed C standard-library name set: printf, malloc, ...
	KindOperator
	KindPunctuation
	KindLiteral      // numeric, string, and character literals
	KindPreprocessor // directive command word: #include, #define, ...
)

var kindNames = [...]string{
	KindKeyword:      "keyword",
	KindIdentifier:   "identifier",
	KindFunction:     "function",
	KindOperator:     "operator",
	KindPunctuation:  "punctuation",
	KindLiteral:      "literal",
	KindPreprocessor: "preprocessor",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText makes Kind serialize as its category name, which is what the
// display layer keys its highlighting tables on.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Token is a single lexical unit with its 1-based source position.
// Tokens are immutable once produced.
type Token struct {
	Kind   Kind   `json:"kind"`
	Text   string `json:"text"` // the exact source text that was matched
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func (t Token) String() string {
	return fmt.Sprintf("%-12s %-16q  line %d col %d", t.Kind, t.Text, t.Line, t.Column)
}

// keywords is the fixed reserved-word set. Anything else that looks like a
// word is either a known library function or an identifier.
var keywords = map[string]bool{
	"auto": true, "break": true, "case": true, "char": true,
	"const": true, "continue": true, "default": true, "do": true,
	"double": true, "else": true, "enum": true, "extern": true,
	"float": true, "for": true, "goto": true, "if": true,
	"int": true, "long": true, "register": true, "return": true,
	"short": true, "signed": true, "sizeof": true, "static": true,
	"struct": true, "switch": true, "typedef": true, "union": true,
	"unsigned": true, "void": true, "volatile": true, "while": true,
}

// stdFunctions is the fixed standard-library name set recognized as
// KindFunction. The trace generator keys several of its fingerprints on
// these names.
var stdFunctions = map[string]bool{
	"printf": true, "scanf": true, "puts": true, "gets": true,
	"putchar": true, "getchar": true,
	"malloc": true, "calloc": true, "realloc": true, "free": true,
	"fopen": true, "fclose": true, "fprintf": true, "fscanf": true,
	"fgets": true, "fputs": true, "fread": true, "fwrite": true,
	"strlen": true, "strcpy": true, "strncpy": true, "strcmp": true,
	"strcat": true, "memset": true, "memcpy": true,
	"exit": true, "abs": true, "rand": true, "srand": true,
}

// punctuation is the subset of single-character matches reported as
// KindPunctuation rather than KindOperator.
var punctuation = map[string]bool{
	";": true, ",": true, "(": true, ")": true,
	"{": true, "}": true, "[": true, "]": true,
	".": true, ":": true, "#": true,
}

func classifyWord(word string) Kind {
	if keywords[word] {
		return KindKeyword
	}
	if stdFunctions[word] {
		return KindFunction
	}
	return KindIdentifier
}
