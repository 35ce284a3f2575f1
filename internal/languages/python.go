package languages

// pyDynamicKey adds f-strings to the shared dynamic key shapes.
const pyDynamicKey = dynamicKey + `|f["'][^"']*\{[^"']*["']`

func python() LanguageConfig {
	return LanguageConfig{
		Name:         "python",
		FileMatchers: []string{"*.py", "*.pyi", "*.pyx"},
		DetectionPatterns: []DetectionPattern{
			{Pattern: `\bos\.getenv\(\s*["']([^"']+)["']` + argEnd, Group: 1},
			{Pattern: `\bos\.environ\[\s*["']([^"']+)["']\s*\]`, Group: 1},
			{Pattern: `\bos\.environ\.get\(\s*["']([^"']+)["']` + argEnd, Group: 1},
			// django-environ: env("DEBUG"), env.bool("DEBUG")
			{Pattern: `\benv(?:\.(?:str|int|bool|float|list|dict|json|url|db))?\(\s*["']([A-Z_][A-Z0-9_]*)["']` + argEnd, Group: 1},

			{Pattern: `\bos\.getenv\(\s*(` + pyDynamicKey + `)` + argEnd, Group: 1, Dynamic: true},
			{Pattern: `\bos\.environ\[\s*(` + pyDynamicKey + `)\s*\]`, Group: 1, Dynamic: true},
			{Pattern: `\bos\.environ\.get\(\s*(` + pyDynamicKey + `)` + argEnd, Group: 1, Dynamic: true},
		},
		// Docstrings are stripped like comments. Any triple-quoted string is,
		// which is the known cost of not tokenizing.
		CommentPatterns: []string{hashComment, `'''[\s\S]*?'''`, `"""[\s\S]*?"""`},
	}
}
