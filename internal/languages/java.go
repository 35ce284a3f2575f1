package languages

func java() LanguageConfig {
	return LanguageConfig{
		Name:         "java",
		FileMatchers: []string{"*.java"},
		DetectionPatterns: []DetectionPattern{
			{Pattern: `\bSystem\.getenv\(\s*"([^"]+)"` + argEnd, Group: 1},
			{Pattern: `\bSystem\.getProperty\(\s*"([^"]+)"` + argEnd, Group: 1},
			// Spring: @Value("${DB_URL:default}")
			{Pattern: `@Value\(\s*"\$\{([A-Za-z_][A-Za-z0-9_.\-]*)`, Group: 1},
		},
		CommentPatterns: []string{slashLineComment, blockComment},
	}
}

func kotlin() LanguageConfig {
	return LanguageConfig{
		Name:         "kotlin",
		FileMatchers: []string{"*.kt", "*.kts"},
		DetectionPatterns: []DetectionPattern{
			{Pattern: `\bSystem\.getenv\(\s*"([^"]+)"` + argEnd, Group: 1},
			{Pattern: `\bSystem\.getenv\(\)\[\s*"([^"]+)"\s*\]`, Group: 1},
		},
		CommentPatterns: []string{slashLineComment, blockComment},
	}
}

func scala() LanguageConfig {
	return LanguageConfig{
		Name:         "scala",
		FileMatchers: []string{"*.scala", "*.sc"},
		DetectionPatterns: []DetectionPattern{
			{Pattern: `\bsys\.env\(\s*"([^"]+)"` + argEnd, Group: 1},
			{Pattern: `\bsys\.env\.get(?:OrElse)?\(\s*"([^"]+)"` + argEnd, Group: 1},
			{Pattern: `\bSystem\.getenv\(\s*"([^"]+)"` + argEnd, Group: 1},
		},
		CommentPatterns: []string{slashLineComment, blockComment},
	}
}
