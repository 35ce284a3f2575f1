package languages

func csharp() LanguageConfig {
	return LanguageConfig{
		Name:         "csharp",
		FileMatchers: []string{"*.cs"},
		DetectionPatterns: []DetectionPattern{
			{Pattern: `\bEnvironment\.GetEnvironmentVariable\(\s*"([^"]+)"` + argEnd, Group: 1},
		},
		CommentPatterns: []string{slashLineComment, blockComment},
	}
}

func c() LanguageConfig {
	return LanguageConfig{
		Name:         "c",
		FileMatchers: []string{"*.c", "*.h"},
		DetectionPatterns: []DetectionPattern{
			{Pattern: `\b(?:secure_)?getenv\(\s*"([^"]+)"` + argEnd, Group: 1},
		},
		CommentPatterns: []string{slashLineComment, blockComment},
	}
}

// cpp also lists "*.h"; c is registered first and keeps those files.
func cpp() LanguageConfig {
	return LanguageConfig{
		Name:         "cpp",
		FileMatchers: []string{"*.cc", "*.cpp", "*.cxx", "*.hh", "*.hpp", "*.hxx", "*.h"},
		DetectionPatterns: []DetectionPattern{
			{Pattern: `\b(?:std::)?(?:secure_)?getenv\(\s*"([^"]+)"` + argEnd, Group: 1},
		},
		CommentPatterns: []string{slashLineComment, blockComment},
	}
}

func swift() LanguageConfig {
	return LanguageConfig{
		Name:         "swift",
		FileMatchers: []string{"*.swift"},
		DetectionPatterns: []DetectionPattern{
			{Pattern: `\bProcessInfo\.processInfo\.environment\[\s*"([^"]+)"\s*\]`, Group: 1},
			{Pattern: `\bgetenv\(\s*"([^"]+)"` + argEnd, Group: 1},
		},
		CommentPatterns: []string{slashLineComment, blockComment},
	}
}
