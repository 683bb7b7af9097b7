package parser

import (
	"rustdex/internal/ast"
	"rustdex/internal/diag"
	"rustdex/internal/lexer"
	"rustdex/internal/source"
	"rustdex/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough reports whether the error budget is spent.
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	File   ast.FileID
	Errors uint
}

// Parser — состояние парсера на один файл.
type Parser struct {
	lx       *lexer.Lexer
	buf      []token.Token // lookahead, Invalid tokens already dropped
	arenas   *ast.Builder
	file     ast.FileID
	fileID   source.FileID
	opts     Options
	lastSpan source.Span // span последнего съеденного токена

	// children collects items created while parsing a container so their
	// Parent back reference can be set once the container exists.
	children [][]ast.ItemID
	noStruct bool // struct literals are not allowed (if/while conditions)
}

// ParseFile parses one file. It never stops at the first error: a broken
// item is skipped up to the next item boundary.
func ParseFile(file *source.File, lx *lexer.Lexer, arenas *ast.Builder, opts Options) Result {
	empty := source.Span{File: file.ID}
	p := Parser{
		lx:       lx,
		arenas:   arenas,
		file:     arenas.NewFile(empty),
		fileID:   file.ID,
		opts:     opts,
		lastSpan: empty,
	}
	p.parseItems()
	return Result{File: p.file, Errors: p.opts.CurrentErrors}
}

// parseItems — основной цикл верхнего уровня.
func (p *Parser) parseItems() {
	start := p.peek().Span
	p.beginChildren()
	for !p.at(token.EOF) {
		if p.at(token.RBrace) {
			p.errExpected(diag.SynUnexpectedTopLevel, "item")
			p.advance()
			continue
		}
		itemID, ok := p.parseItem()
		if !ok {
			p.resyncItem()
			continue
		}
		p.arenas.PushItem(p.file, itemID)
	}
	p.adoptChildren(ast.NoItemID)
	p.arenas.Files.Get(p.file).Span = start.Cover(p.peek().Span)
}

// parseItemList parses items until the closing '}' of a module body.
func (p *Parser) parseItemList(open token.Token) ([]ast.ItemID, source.Span) {
	var items []ast.ItemID
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		itemID, ok := p.parseItem()
		if !ok {
			p.resyncItem()
			continue
		}
		items = append(items, itemID)
	}
	closeTok, _ := p.closeDelim(open, token.RBrace)
	return items, open.Span.Cover(closeTok.Span)
}

// parseItem dispatches on the first token after attributes and visibility.
func (p *Parser) parseItem() (ast.ItemID, bool) {
	start := p.peek().Span
	p.skipAttributes()

	vis := ast.VisPrivate
	if p.at(token.KwPub) {
		p.advance()
		vis = ast.VisPublic
	}
	hdr := ast.Header{Span: start, Visibility: vis}

	var (
		id ast.ItemID
		ok bool
	)
	switch p.peek().Kind {
	case token.KwMod:
		id, ok = p.parseModItem(hdr)
	case token.KwUse:
		id, ok = p.parseUseItem(hdr)
	case token.KwStruct:
		id, ok = p.parseStructItem(hdr)
	case token.KwTrait:
		id, ok = p.parseTraitItem(hdr)
	case token.KwImpl:
		id, ok = p.parseImplItem(hdr)
	case token.KwFn:
		id, ok = p.parseFnItem(hdr, fnFree)
	case token.KwStatic:
		id, ok = p.parseStaticItem(hdr)
	default:
		p.errExpected(diag.SynExpectItem, "'mod'", "'use'", "'struct'", "'trait'", "'impl'", "'fn'", "'static'")
		return ast.NoItemID, false
	}
	if ok {
		p.noteChild(id)
	}
	return id, ok
}

// resyncItem — восстановление после ошибки на уровне item: пропускаем токены
// до начала следующего item, до '}' текущего модуля или EOF. Вложенные
// скобки пропускаются целиком; ';' на нулевой глубине съедается.
func (p *Parser) resyncItem() {
	depth := 0
	for {
		tok := p.peek()
		switch tok.Kind {
		case token.EOF:
			return
		case token.LBrace, token.LParen, token.LBracket:
			depth++
		case token.RBrace, token.RParen, token.RBracket:
			if depth == 0 {
				if tok.Kind == token.RBrace {
					return
				}
			} else {
				depth--
				if depth == 0 && tok.Kind == token.RBrace {
					p.advance()
					return
				}
			}
		case token.Semicolon:
			if depth == 0 {
				p.advance()
				return
			}
		default:
			if depth == 0 && tok.IsItemStart() {
				return
			}
		}
		p.advance()
	}
}

func (p *Parser) beginChildren() {
	p.children = append(p.children, nil)
}

func (p *Parser) noteChild(id ast.ItemID) {
	if n := len(p.children); n > 0 {
		p.children[n-1] = append(p.children[n-1], id)
	}
}

// adoptChildren pops the current frame and points its items at parent.
func (p *Parser) adoptChildren(parent ast.ItemID) {
	n := len(p.children)
	if n == 0 {
		return
	}
	for _, child := range p.children[n-1] {
		p.arenas.Items.SetParent(child, parent)
	}
	p.children = p.children[:n-1]
}
