package driver

import (
	"rustdex/internal/diag"
	"rustdex/internal/lexer"
	"rustdex/internal/source"
	"rustdex/internal/token"
)

type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
	Bag     *diag.Bag
}

// Tokenize lexes one file from disk.
func Tokenize(path string, maxDiagnostics int, keepTrivia bool) (*TokenizeResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	return TokenizeFile(fs, fs.Get(fileID), maxDiagnostics, keepTrivia), nil
}

// TokenizeFile lexes a file already in fs. The result ends with EOF.
func TokenizeFile(fs *source.FileSet, file *source.File, maxDiagnostics int, keepTrivia bool) *TokenizeResult {
	bag := diag.NewBag(maxDiagnostics)
	lx := lexer.New(file, lexer.Options{
		Reporter:   diag.BagReporter{Bag: bag},
		KeepTrivia: keepTrivia,
	})

	return &TokenizeResult{
		FileSet: fs,
		File:    file,
		Tokens:  lx.Tokens(),
		Bag:     bag,
	}
}
