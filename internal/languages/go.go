package languages

func golang() LanguageConfig {
	return LanguageConfig{
		Name:         "go",
		FileMatchers: []string{"*.go"},
		DetectionPatterns: []DetectionPattern{
			// os.Getenv("KEY"), os.LookupEnv(`KEY`)
			{Pattern: "\\bos\\.(?:Getenv|LookupEnv)\\(\\s*[\"`]([^\"`]+)[\"`]\\s*\\)", Group: 1},
			{Pattern: `\bsyscall\.Getenv\(\s*"([^"]+)"\s*\)`, Group: 1},
			{Pattern: `\bviper\.Get\(\s*"([^"]+)"\s*\)`, Group: 1},
			// struct tags read by env/envconfig style loaders: `env:"PORT"`
			{Pattern: `\b(?:env|envconfig):"(` + identifier + `)`, Group: 1},

			// os.Getenv(key), os.Getenv(prefix + "_URL")
			{Pattern: `\bos\.(?:Getenv|LookupEnv)\(\s*(` + dynamicKey + `)\s*\)`, Group: 1, Dynamic: true},
		},
		CommentPatterns: []string{slashLineComment, blockComment},
	}
}
