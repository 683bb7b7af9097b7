package parser

import "rustdex/internal/token"

// Приоритеты бинарных операторов (чем больше, тем сильнее связывание).
const (
	precAssignment     = 1 // =
	precLogicalOr      = 2 // ||
	precLogicalAnd     = 3 // &&
	precEquality       = 4 // == !=
	precComparison     = 5 // < <= > >=
	precBitwiseOr      = 6 // |
	precBitwiseXor     = 7 // ^
	precBitwiseAnd     = 8 // &
	precAdditive       = 9 // + -
	precMultiplicative = 10
)

// binaryPrec returns the precedence of kind and whether it is right-associative.
func binaryPrec(kind token.Kind) (int, bool, bool) {
	switch kind {
	case token.Assign:
		return precAssignment, true, true
	case token.OrOr:
		return precLogicalOr, false, true
	case token.AndAnd:
		return precLogicalAnd, false, true
	case token.EqEq, token.BangEq:
		return precEquality, false, true
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		return precComparison, false, true
	case token.Pipe:
		return precBitwiseOr, false, true
	case token.Caret:
		return precBitwiseXor, false, true
	case token.Amp:
		return precBitwiseAnd, false, true
	case token.Plus, token.Minus:
		return precAdditive, false, true
	case token.Star, token.Slash, token.Percent:
		return precMultiplicative, false, true
	default:
		return 0, false, false
	}
}
