package symbols

// PreludeEntry describes a symbol injected before source traversal.
type PreludeEntry struct {
	Name string
	Kind SymbolKind
}

// builtinPreludeEntries returns the default set of built-in symbols exposed to every unit.
func builtinPreludeEntries() []PreludeEntry {
	types := []string{
		"u8", "u16", "u32", "u64", "i8", "i16", "i32", "i64",
		"uint", "int", "float", "f32", "f64", "bool", "char", "str",
	}
	entries := make([]PreludeEntry, 0, len(types)+3)
	for _, name := range types {
		entries = append(entries, PreludeEntry{Name: name, Kind: SymbolType})
	}
	for _, name := range []string{"println", "print", "fail"} {
		entries = append(entries, PreludeEntry{Name: name, Kind: SymbolFunction})
	}
	return entries
}

// mergePrelude combines default builtins with user provided entries.
func mergePrelude(custom []PreludeEntry) []PreludeEntry {
	defaults := builtinPreludeEntries()
	if len(custom) == 0 {
		return defaults
	}
	result := make([]PreludeEntry, 0, len(defaults)+len(custom))
	result = append(result, defaults...)
	result = append(result, custom...)
	return result
}

// installPrelude creates the shared prelude scope.
func (t *Table) installPrelude(entries []PreludeEntry) ScopeID {
	scope := t.Scopes.New(ScopePrelude, NoScopeID, NoSymbolID, spanNone)
	sc := t.Scopes.Get(scope)
	for _, entry := range entries {
		name := t.Strings.InternIdent(entry.Name)
		if len(sc.Names[name]) > 0 {
			continue
		}
		id := t.Symbols.New(&Symbol{
			Name:  name,
			Kind:  entry.Kind,
			Scope: scope,
			Flags: SymbolFlagBuiltin | SymbolFlagPublic,
			Qual:  entry.Name,
		})
		sc.Symbols = append(sc.Symbols, id)
		sc.Names[name] = append(sc.Names[name], id)
	}
	return scope
}
