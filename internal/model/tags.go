package model

import "strings"

// TagSeparator is what JoinTags puts between tags. SplitTags only needs the
// comma; surrounding whitespace is trimmed.
const TagSeparator = ", "

// SplitTags turns the stored tags string into individual labels.
// "go, cli,,  db " → ["go", "cli", "db"]
//
// The store never calls this. Tags are an opaque string to the core; the
// convention belongs to whatever shell renders them.
func SplitTags(tags string) []string {
	parts := strings.Split(tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinTags is the inverse of SplitTags.
func JoinTags(tags []string) string {
	return strings.Join(tags, TagSeparator)
}

// HasAllTags reports whether s carries every tag in want.
// An empty want matches everything.
func HasAllTags(s Snippet, want []string) bool {
	have := make(map[string]struct{})
	for _, t := range SplitTags(s.Tags) {
		have[t] = struct{}{}
	}
	for _, w := range want {
		if _, ok := have[w]; !ok {
			return false
		}
	}
	return true
}

// CollectTags returns the distinct tags across snippets in first-seen order.
func CollectTags(snippets []Snippet) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range snippets {
		for _, t := range SplitTags(s.Tags) {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
