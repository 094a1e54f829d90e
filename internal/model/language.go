package model

// Language is an entry in the list of languages the shells offer for
// completion. The store accepts any string as a language.
type Language struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// KnownLanguages is the suggestion list, in display order.
var KnownLanguages = []Language{
	{Value: "javascript", Label: "JavaScript"},
	{Value: "typescript", Label: "TypeScript"},
	{Value: "python", Label: "Python"},
	{Value: "rust", Label: "Rust"},
	{Value: "java", Label: "Java"},
	{Value: "cpp", Label: "C++"},
	{Value: "csharp", Label: "C#"},
	{Value: "go", Label: "Go"},
	{Value: "html", Label: "HTML"},
	{Value: "css", Label: "CSS"},
	{Value: "sql", Label: "SQL"},
	{Value: "bash", Label: "Bash"},
	{Value: "json", Label: "JSON"},
	{Value: "yaml", Label: "YAML"},
	{Value: "markdown", Label: "Markdown"},
}

// LanguageValues returns just the Value of each known language.
func LanguageValues() []string {
	out := make([]string, len(KnownLanguages))
	for i, l := range KnownLanguages {
		out[i] = l.Value
	}
	return out
}
