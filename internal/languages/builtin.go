package languages

// Identifier is the shape of a conventional environment variable name.
const identifier = `[A-Za-z_][A-Za-z0-9_]*`

// Key shapes shared by call-style patterns.
const (
	// argEnd requires a quoted key to be the whole argument, so
	// getenv("APP_" + name) is not read as the variable APP_.
	argEnd = `\s*[,)]`
	// dynamicKey is a key known only at run time: a variable or field
	// reference (key, cfg.Name) or a concatenation that starts with a
	// string or a variable ("APP_" + name). Concatenations containing
	// calls are not matched.
	dynamicKey = identifier + `(?:\.` + identifier + `)*` +
		`|["'][^"']*["']\s*\+[^,()\]]*[^,()\]\s]` +
		`|` + identifier + `\s*\+[^,()\]]*[^,()\]\s]`
)

// Comment patterns shared by several languages.
const (
	slashLineComment = `//.*`
	blockComment     = `/\*[\s\S]*?\*/`
	hashComment      = `#.*`
	// hashLineComment only strips whole-line comments, for languages where
	// "#" also shows up inside expressions ("${#list[@]}", "#{interp}").
	hashLineComment = `(?m)^[ \t]*#.*`
)

// Builtin returns the built-in language table in lookup order. When several
// languages accept the same file the one listed first wins, e.g. "*.h" goes
// to c rather than cpp.
func Builtin() []LanguageConfig {
	return []LanguageConfig{
		javaScript(),
		typeScript(),
		python(),
		golang(),
		rust(),
		java(),
		kotlin(),
		scala(),
		csharp(),
		c(),
		cpp(),
		swift(),
		php(),
		ruby(),
		elixir(),
		shell(),
		dockerfile(),
		configFiles(),
	}
}

// NewBuiltinRegistry compiles the built-in table.
func NewBuiltinRegistry() (*Registry, error) {
	return NewRegistry(Builtin())
}

// FileMatchers returns the union of file matchers of the built-in table, in
// lookup order.
func FileMatchers() []string {
	var out []string
	seen := make(map[string]bool)
	for _, cfg := range Builtin() {
		for _, m := range cfg.FileMatchers {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out
}
