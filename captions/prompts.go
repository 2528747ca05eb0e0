package captions

import (
	"fmt"
	"strings"
)

const (
	systemPrompt = "You are a witty viral video editor."

	captionInstruction = "Create a very short (max 4 words), funny, clickbait-style title for each clip below. " +
		"Number them 1., 2., etc. Example: '1. I NEED MONEY'."

	titleInstruction = "Create one bold, clickbait YouTube Shorts title summarizing all clips below. " +
		"Make it in all caps, max 10 words, like 'TOP 5 FUNNY FAILS (GONE WRONG)'."
)

// captionPrompt lists one "Clip n: text" paragraph per clip
func captionPrompt(texts []string) string {
	parts := make([]string, len(texts))
	for i, t := range texts {
		parts[i] = fmt.Sprintf("Clip %d: %s", i+1, strings.TrimSpace(t))
	}
	return captionInstruction + "\n\n" + strings.Join(parts, "\n\n")
}

func titlePrompt(texts []string) string {
	return titleInstruction + "\n\n" + strings.Join(texts, "\n")
}
