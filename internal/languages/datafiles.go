package languages

// configFiles covers "${VAR}" interpolation in data files read by compose,
// CI systems and config loaders.
func configFiles() LanguageConfig {
	return LanguageConfig{
		Name:         "config",
		FileMatchers: []string{"*.yaml", "*.yml", "*.json", "*.toml", "*.ini"},
		DetectionPatterns: []DetectionPattern{
			{Pattern: `\$\{(` + identifier + `)(?::?[-=?+][^}]*)?\}`, Group: 1},
		},
		CommentPatterns: []string{hashLineComment},
	}
}
