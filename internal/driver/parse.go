package driver

import (
	"fmt"

	"fortio.org/safecast"

	"rustdex/internal/ast"
	"rustdex/internal/diag"
	"rustdex/internal/lexer"
	"rustdex/internal/parser"
	"rustdex/internal/source"
)

type ParseResult struct {
	FileSet *source.FileSet
	File    *source.File
	Builder *ast.Builder
	FileID  ast.FileID
	Bag     *diag.Bag
}

// Parse lexes and parses one file from disk.
func Parse(filePath string, maxDiagnostics int) (*ParseResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(filePath)
	if err != nil {
		return nil, err
	}
	file := fs.Get(fileID)

	bag := diag.NewBag(maxDiagnostics)
	builder := ast.NewBuilder(ast.Hints{}, nil)
	astFile, err := parseInto(file, builder, bag, maxDiagnostics)
	if err != nil {
		return nil, err
	}
	return &ParseResult{
		FileSet: fs,
		File:    file,
		Builder: builder,
		FileID:  astFile,
		Bag:     bag,
	}, nil
}

// parseInto runs lexer and parser over file, reporting into bag.
func parseInto(file *source.File, builder *ast.Builder, bag *diag.Bag, maxDiagnostics int) (ast.FileID, error) {
	maxErrors, err := safecast.Conv[uint](max(maxDiagnostics, 0))
	if err != nil {
		return ast.NoFileID, fmt.Errorf("maxDiagnostics overflow: %w", err)
	}
	reporter := diag.BagReporter{Bag: bag}
	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	opts := parser.Options{
		Reporter:  reporter,
		MaxErrors: maxErrors,
	}
	result := parser.ParseFile(file, lx, builder, opts)
	return result.File, nil
}
