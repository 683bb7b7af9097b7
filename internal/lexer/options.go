package lexer

import (
	"rustdex/internal/diag"
	"rustdex/internal/source"
)

type Options struct {
	// Reporter may be nil; the lexer keeps going either way.
	Reporter diag.Reporter
	// KeepTrivia attaches whitespace and comments to tokens as Leading.
	KeepTrivia bool
}

func (lx *Lexer) errLex(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter != nil {
		lx.opts.Reporter.Report(code, diag.SevError, sp, msg, nil, nil)
	}
}
