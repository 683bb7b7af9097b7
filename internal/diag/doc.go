// Package diag defines the diagnostic model shared by the lexer, parser and
// symbol table builder.
//
// Diagnostic is the central record: Severity, Code, Message, a Primary span
// and optional Notes (secondary spans such as "previous declaration here").
// Phases emit through a Reporter and never stop on a single problem; the
// driver collects everything into a Bag.
//
// Codes are grouped by family (LEX, SYN, SEM, IO, PRJ, OBS, ICE). ICE codes
// flag a broken invariant inside the tool itself and are rendered with an
// "internal" tag by diagfmt.
//
// Package diag does no terminal formatting; see internal/diagfmt.
package diag
