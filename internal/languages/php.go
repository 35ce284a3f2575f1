package languages

func php() LanguageConfig {
	return LanguageConfig{
		Name:         "php",
		FileMatchers: []string{"*.php"},
		DetectionPatterns: []DetectionPattern{
			{Pattern: `\$_ENV\[\s*["']([^"']+)["']\s*\]`, Group: 1},
			{Pattern: `\$_SERVER\[\s*["']([^"']+)["']\s*\]`, Group: 1},
			{Pattern: `\bgetenv\(\s*["']([^"']+)["']` + argEnd, Group: 1},
			// Laravel: env('APP_KEY')
			{Pattern: `\benv\(\s*["']([^"']+)["']` + argEnd, Group: 1},
		},
		CommentPatterns: []string{slashLineComment, hashComment, blockComment},
	}
}
