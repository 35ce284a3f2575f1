package languages

// rubyDynamicKey adds interpolated strings to the shared dynamic key shapes.
const rubyDynamicKey = dynamicKey + `|"[^"]*#\{[^"]*"`

func ruby() LanguageConfig {
	return LanguageConfig{
		Name:         "ruby",
		FileMatchers: []string{"*.rb", "*.rake", "rakefile", "gemfile"},
		DetectionPatterns: []DetectionPattern{
			{Pattern: `\bENV\[\s*["']([^"'#]+)["']\s*\]`, Group: 1},
			{Pattern: `\bENV\.fetch\(\s*["']([^"'#]+)["']` + argEnd, Group: 1},

			// ENV[key], ENV["APP_#{name}"]
			{Pattern: `\bENV\[\s*(` + rubyDynamicKey + `)\s*\]`, Group: 1, Dynamic: true},
			{Pattern: `\bENV\.fetch\(\s*(` + rubyDynamicKey + `)` + argEnd, Group: 1, Dynamic: true},
		},
		CommentPatterns: []string{hashLineComment, `(?m)^=begin[\s\S]*?^=end`},
	}
}

func elixir() LanguageConfig {
	return LanguageConfig{
		Name:         "elixir",
		FileMatchers: []string{"*.ex", "*.exs"},
		DetectionPatterns: []DetectionPattern{
			// System.get_env("KEY"), System.fetch_env!("KEY")
			{Pattern: `\bSystem\.(?:get_env|fetch_env!?)\(\s*"([^"]+)"` + argEnd, Group: 1},
		},
		CommentPatterns: []string{hashLineComment},
	}
}
