package languages

// jsPatterns cover Node, Vite, Deno and Bun style reads. JavaScript and
// TypeScript share them.
var jsPatterns = []DetectionPattern{
	// process.env.API_KEY
	{Pattern: `\bprocess\.env\.(` + identifier + `)`, Group: 1},
	// process.env["API_KEY"], process.env['API_KEY'], process.env[`API_KEY`]
	{Pattern: "\\bprocess\\.env\\[\\s*[\"'`](" + identifier + ")[\"'`]\\s*\\]", Group: 1},
	// import.meta.env.VITE_API_URL
	{Pattern: `\bimport\.meta\.env\.(` + identifier + `)`, Group: 1},
	// Deno.env.get("API_KEY")
	{Pattern: `\bDeno\.env\.get\(\s*["'](` + identifier + `)["']` + argEnd, Group: 1},
	// Bun.env.API_KEY
	{Pattern: `\bBun\.env\.(` + identifier + `)`, Group: 1},

	// process.env[key], process.env["APP_" + k], process.env[`APP_${k}`]
	{Pattern: "\\bprocess\\.env\\[\\s*(" + dynamicKey + "|`[^`]*\\$\\{[^`]*`)\\s*\\]", Group: 1, Dynamic: true},
	// Deno.env.get(name)
	{Pattern: `\bDeno\.env\.get\(\s*(` + dynamicKey + `)` + argEnd, Group: 1, Dynamic: true},
}

func javaScript() LanguageConfig {
	return LanguageConfig{
		Name:              "javascript",
		FileMatchers:      []string{"*.js", "*.jsx", "*.mjs", "*.cjs"},
		DetectionPatterns: jsPatterns,
		CommentPatterns:   []string{slashLineComment, blockComment},
	}
}

func typeScript() LanguageConfig {
	return LanguageConfig{
		Name:              "typescript",
		FileMatchers:      []string{"*.ts", "*.tsx", "*.mts", "*.cts"},
		DetectionPatterns: jsPatterns,
		CommentPatterns:   []string{slashLineComment, blockComment},
	}
}
