package filter

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// textLexer tokenizes the text filter language, a subset of ECQL.
var textLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Literals
	{Name: "String", Pattern: `'(?:''|[^'])*'`},
	{Name: "Number", Pattern: `-?\d+(?:\.\d+)?(?:[eE][-+]?\d+)?`},

	// Attribute paths may contain namespace prefixes, steps and indexes
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_.:/\[\]@]*`},
	{Name: "QuotedIdent", Pattern: `"(?:""|[^"])*"`},

	{Name: "Operator", Pattern: `<>|!=|<=|>=|=|<|>`},
	{Name: "Punct", Pattern: `[(),]`},

	{Name: "Whitespace", Pattern: `\s+`},
})
