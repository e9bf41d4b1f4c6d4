package assist

import "strings"

// DefaultModel is selected until the user picks another.
const DefaultModel = "gpt-4o-mini"

// Models is the catalogue offered by the model picker, grouped by family.
var Models = []string{
	"gpt-5",
	"gpt-5-mini",
	"gpt-5-nano",
	"gpt-5-chat-latest",

	"gpt-4.1",
	"gpt-4.1-mini",
	"gpt-4.1-nano",

	"gpt-4o",
	"gpt-4o-2024-05-13",
	"gpt-4o-audio-preview",
	"gpt-4o-realtime-preview",
	"gpt-4o-mini",
	"gpt-4o-mini-audio-preview",
	"gpt-4o-mini-realtime-preview",
	"gpt-4o-mini-search-preview",
	"gpt-4o-search-preview",

	"o1",
	"o1-pro",
	"o1-mini",

	"o3-pro",
	"o3",
	"o3-deep-research",
	"o3-mini",

	"o4-mini",
	"o4-mini-deep-research",

	"codex-mini-latest",
	"computer-use-preview",
	"gpt-image-1",
	"gpt-4-turbo",
	"gpt-3.5-turbo",
}

// KnownModel reports whether name is in the catalogue.
func KnownModel(name string) bool {
	return modelIndex(name) >= 0
}

func modelIndex(name string) int {
	for i, m := range Models {
		if m == name {
			return i
		}
	}
	return -1
}

var aliases = map[string]string{
	"gpt-5":                        "5",
	"gpt-5-mini":                   "5-mini",
	"gpt-5-nano":                   "5-nano",
	"gpt-5-chat-latest":            "5-chat",
	"gpt-4.1":                      "4.1",
	"gpt-4.1-mini":                 "4.1-mini",
	"gpt-4.1-nano":                 "4.1-nano",
	"gpt-4o":                       "4o",
	"gpt-4o-mini":                  "4o-mini",
	"gpt-4o-mini-search-preview":   "4o-mini-search",
	"gpt-4o-search-preview":        "4o-search",
	"gpt-4o-mini-realtime-preview": "4o-mini-rt",
	"gpt-4o-realtime-preview":      "4o-rt",
	"o3-deep-research":             "o3-dr",
	"o4-mini-deep-research":        "o4-mini-dr",
	"codex-mini-latest":            "codex-mini",
	"computer-use-preview":         "cua",
	"gpt-4-turbo":                  "4-turbo",
	"gpt-3.5-turbo":                "3.5",
}

// ModelAlias returns a short label for a model name, for the status bar.
func ModelAlias(model string) string {
	if a, ok := aliases[model]; ok {
		return a
	}
	// Provider-prefixed names like "openai/gpt-4o".
	if i := strings.LastIndex(model, "/"); i >= 0 {
		if a, ok := aliases[model[i+1:]]; ok {
			return a
		}
		model = model[i+1:]
	}
	if len(model) > 16 {
		return model[:15] + "…"
	}
	return model
}
