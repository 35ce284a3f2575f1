package languages

func rust() LanguageConfig {
	return LanguageConfig{
		Name:         "rust",
		FileMatchers: []string{"*.rs"},
		DetectionPatterns: []DetectionPattern{
			// env::var("KEY"), std::env::var_os("KEY")
			{Pattern: `\b(?:std::)?env::var(?:_os)?\(\s*"([^"]+)"` + argEnd, Group: 1},
			// env!("KEY"), option_env!("KEY")
			{Pattern: `\b(?:option_)?env!\(\s*"([^"]+)"` + argEnd, Group: 1},
			{Pattern: `\bdotenvy?::var\(\s*"([^"]+)"` + argEnd, Group: 1},
		},
		CommentPatterns: []string{slashLineComment, blockComment},
	}
}
