// Package chunk splits code-like spans into chunks aligned to top-level
// declarations, falling back to the whole block when the code does not
// parse. PDF extraction routinely produces truncated or mangled code, so
// the fallback path is the common case, not the exception: no input is
// ever dropped.
package chunk

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"

	"bookrag/internal/corpus"
)

// Sentinel symbols for fallback chunks.
const (
	SymbolModule   = "<module>"
	SymbolUnparsed = "<unparsed>"
)

// Outcome tags how a span was decomposed.
type Outcome int

const (
	// Parsed means top-level declarations were found and chunked.
	Parsed Outcome = iota
	// FallbackModule means the span parsed but held no declarations;
	// the whole block became one chunk.
	FallbackModule
	// FallbackUnparsed means parsing failed; the raw block became one
	// chunk.
	FallbackUnparsed
)

// Result carries the chunks plus how they were produced, so callers can
// handle the parsed and fallback paths uniformly.
type Result struct {
	Outcome Outcome
	Reason  string // parse error text when Outcome is FallbackUnparsed
	Chunks  []corpus.Chunk
}

// Bare textbook snippets rarely carry a package clause; a synthetic one
// makes them parseable. Offsets are mapped back so chunks stay exact
// substrings of the original span.
const syntheticHeader = "package main\n\n"

// Code splits a code span into declaration-aligned chunks. The returned
// slice is never empty.
func Code(blockID, code string, page int) Result {
	src, offset := ensurePackageClause(code)

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, blockID+".go", src, parser.ParseComments)
	if err != nil {
		return Result{
			Outcome: FallbackUnparsed,
			Reason:  err.Error(),
			Chunks:  []corpus.Chunk{fallbackChunk(blockID, SymbolUnparsed, code, page)},
		}
	}

	var chunks []corpus.Chunk
	for _, decl := range file.Decls {
		symbol, ok := declSymbol(decl)
		if !ok {
			continue
		}
		start := fset.Position(decl.Pos()).Offset - offset
		end := fset.Position(decl.End()).Offset - offset
		if start < 0 || end > len(code) || start >= end {
			continue
		}
		chunks = append(chunks, corpus.Chunk{
			ID:     blockID + "::" + symbol,
			Symbol: symbol,
			Pages:  []int{page},
			Text:   code[start:end],
		})
	}

	if len(chunks) == 0 {
		return Result{
			Outcome: FallbackModule,
			Chunks:  []corpus.Chunk{fallbackChunk(blockID, SymbolModule, code, page)},
		}
	}
	return Result{Outcome: Parsed, Chunks: chunks}
}

func fallbackChunk(blockID, symbol, code string, page int) corpus.Chunk {
	return corpus.Chunk{
		ID:     blockID + "::" + symbol,
		Symbol: symbol,
		Pages:  []int{page},
		Text:   code,
	}
}

func ensurePackageClause(code string) (src string, offset int) {
	trimmed := strings.TrimLeft(code, " \t\r\n")
	if strings.HasPrefix(trimmed, "package ") || strings.HasPrefix(trimmed, "package\t") {
		return code, 0
	}
	return syntheticHeader + code, len(syntheticHeader)
}

// declSymbol names a top-level declaration: plain functions by name,
// methods as Receiver.Name, type declarations by the first type name.
// Import, const and var groups carry no symbol of their own.
func declSymbol(decl ast.Decl) (string, bool) {
	switch d := decl.(type) {
	case *ast.FuncDecl:
		if d.Name == nil {
			return "", false
		}
		if recv := receiverName(d); recv != "" {
			return recv + "." + d.Name.Name, true
		}
		return d.Name.Name, true
	case *ast.GenDecl:
		if d.Tok != token.TYPE {
			return "", false
		}
		for _, spec := range d.Specs {
			if ts, ok := spec.(*ast.TypeSpec); ok && ts.Name != nil {
				return ts.Name.Name, true
			}
		}
	}
	return "", false
}

func receiverName(d *ast.FuncDecl) string {
	if d.Recv == nil || len(d.Recv.List) == 0 {
		return ""
	}
	expr := d.Recv.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name
	}
	return ""
}
