package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексические
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004
	LexUnterminatedChar         Code = 1005

	// Синтаксические
	SynInfo                 Code = 2000
	SynUnexpectedToken      Code = 2001
	SynUnclosedDelimiter    Code = 2002
	SynExpectSemicolon      Code = 2003
	SynExpectIdentifier     Code = 2004
	SynExpectType           Code = 2005
	SynExpectExpression     Code = 2006
	SynExpectPattern        Code = 2007
	SynExpectItem           Code = 2008
	SynUnexpectedTopLevel   Code = 2009
	SynUnsupportedGlob      Code = 2010
	SynExpectBody           Code = 2011
	SynVisibilityNotAllowed Code = 2012

	// Семантические (таблица символов)
	SemaInfo                  Code = 3000
	SemaDuplicateSymbol       Code = 3002
	SemaUnresolvedSymbol      Code = 3005
	SemaDanglingAlias         Code = 3006
	SemaCyclicSupertrait      Code = 3007
	SemaSupertraitUnsatisfied Code = 3008
	SemaExpectedTrait         Code = 3009
	SemaMissingTraitMethod    Code = 3010
	SemaUnknownTraitMethod    Code = 3011
	SemaExpectedType          Code = 3012
	SemaSelfOutsideImpl       Code = 3013
	SemaSuperAtRoot           Code = 3014
	SemaPrivateItem           Code = 3015

	IOLoadFileError Code = 4001

	ProjInfo                Code = 5000
	ProjMissingModuleFile   Code = 5001
	ProjAmbiguousModuleFile Code = 5002
	ProjModuleFileReused    Code = 5003

	ObsInfo    Code = 6000
	ObsTimings Code = 6001

	// Внутренние ошибки инструмента
	ICEAmbiguousSymbol Code = 9001
	ICETableInvariant  Code = 9002
)

var codeDescription = map[Code]string{
	UnknownCode:                 "Unknown error",
	LexInfo:                     "Lexical information",
	LexUnknownChar:              "Unknown character",
	LexUnterminatedString:       "Unterminated string literal",
	LexUnterminatedBlockComment: "Unterminated block comment",
	LexBadNumber:                "Malformed number literal",
	LexUnterminatedChar:         "Unterminated character literal",
	SynInfo:                     "Syntax information",
	SynUnexpectedToken:          "Unexpected token",
	SynUnclosedDelimiter:        "Unclosed delimiter",
	SynExpectSemicolon:          "Missing semicolon",
	SynExpectIdentifier:         "Expected identifier",
	SynExpectType:               "Expected type",
	SynExpectExpression:         "Expected expression",
	SynExpectPattern:            "Expected pattern",
	SynExpectItem:               "Expected item",
	SynUnexpectedTopLevel:       "Unexpected token at item level",
	SynUnsupportedGlob:          "Glob imports are not supported",
	SynExpectBody:               "Expected body",
	SynVisibilityNotAllowed:     "Visibility modifier not allowed here",
	SemaInfo:                    "Semantic information",
	SemaDuplicateSymbol:         "Duplicate declaration",
	SemaUnresolvedSymbol:        "Unresolved name",
	SemaDanglingAlias:           "Dangling alias",
	SemaCyclicSupertrait:        "Cyclic supertrait",
	SemaSupertraitUnsatisfied:   "Supertrait unsatisfied",
	SemaExpectedTrait:           "Expected a trait",
	SemaMissingTraitMethod:      "Missing trait method",
	SemaUnknownTraitMethod:      "Method is not a member of the trait",
	SemaExpectedType:            "Expected a type",
	SemaSelfOutsideImpl:         "Self outside of impl or trait",
	SemaSuperAtRoot:             "super at crate root",
	SemaPrivateItem:             "Item is private",
	IOLoadFileError:             "I/O load file error",
	ProjInfo:                    "Project information",
	ProjMissingModuleFile:       "Missing module file",
	ProjAmbiguousModuleFile:     "Ambiguous module file",
	ProjModuleFileReused:        "Module file already loaded",
	ObsInfo:                     "Observability information",
	ObsTimings:                  "Pipeline timings",
	ICEAmbiguousSymbol:          "Ambiguous symbol",
	ICETableInvariant:           "Symbol table invariant violated",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	case ic >= 9000 && ic < 10000:
		return fmt.Sprintf("ICE%04d", ic)
	}
	return "E0000"
}

// IsInternal reports whether the code flags a defect in the tool rather than in the input.
func (c Code) IsInternal() bool {
	return c >= 9000 && c < 10000
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
