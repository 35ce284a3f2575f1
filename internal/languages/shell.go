package languages

// Expansion patterns: "${VAR}", "${VAR:-default}" and bare "$VAR". The two
// never fire on the same text since "{" is not an identifier character.
var expansionPatterns = []DetectionPattern{
	{Pattern: `\$\{(` + identifier + `)[^}]*\}`, Group: 1},
	{Pattern: `\$(` + identifier + `)`, Group: 1},
}

func shell() LanguageConfig {
	return LanguageConfig{
		Name:              "shell",
		FileMatchers:      []string{"*.sh", "*.bash", "*.zsh", "*.fish"},
		DetectionPatterns: expansionPatterns,
		CommentPatterns:   []string{hashLineComment},
	}
}

func dockerfile() LanguageConfig {
	return LanguageConfig{
		Name:              "dockerfile",
		FileMatchers:      []string{"dockerfile", "dockerfile.*", "*.dockerfile", "containerfile"},
		DetectionPatterns: expansionPatterns,
		CommentPatterns:   []string{hashLineComment},
	}
}
