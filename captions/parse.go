package captions

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"shortsbot/config"
	"shortsbot/types"
)

var numberedLineRe = regexp.MustCompile(`(?i)^(?:clip\s*)?(\d+)\s*[.):\-]\s*(.*)$`)

// ParseCaptions maps generated lines onto clipIDs. A leading number binds a
// line to that clip; unnumbered lines fill the next free slot in order.
// Slots left empty get "CLIP n" with n 1-based.
func ParseCaptions(raw string, clipIDs []string) types.CaptionSet {
	slots := make([]string, len(clipIDs))
	var unnumbered []string

	for _, line := range strings.Split(raw, "\n") {
		line = cleanLine(line)
		if line == "" {
			continue
		}
		if m := numberedLineRe.FindStringSubmatch(line); m != nil {
			text := cleanLine(m[2])
			n, err := strconv.Atoi(m[1])
			if err == nil && n >= 1 && n <= len(slots) {
				if slots[n-1] == "" && text != "" {
					slots[n-1] = text
					continue
				}
				line = text
			}
		}
		if line != "" {
			unnumbered = append(unnumbered, line)
		}
	}

	next := 0
	for _, text := range unnumbered {
		for next < len(slots) && slots[next] != "" {
			next++
		}
		if next >= len(slots) {
			break
		}
		slots[next] = text
	}

	return buildSet(slots, clipIDs)
}

func buildSet(slots []string, clipIDs []string) types.CaptionSet {
	set := types.CaptionSet{
		Ordered:  make([]string, len(clipIDs)),
		Captions: make(map[string]string, len(clipIDs)),
	}
	for i, id := range clipIDs {
		text := slots[i]
		if text == "" {
			text = fmt.Sprintf("CLIP %d", i+1)
		}
		set.Ordered[i] = text
		set.Captions[id] = text
	}
	return set
}

// NormalizeTitle keeps the first non-empty line, upper-cased and capped at 100 characters
func NormalizeTitle(raw string) string {
	title := ""
	for _, line := range strings.Split(raw, "\n") {
		if line = cleanLine(line); line != "" {
			title = line
			break
		}
	}
	title = strings.ToUpper(title)
	if r := []rune(title); len(r) > config.MaxTitleLength {
		title = string(r[:config.MaxTitleLength])
	}
	return strings.TrimSpace(title)
}

// LabelFromTitle synthesizes "N. SHORT TITLE" from a clip title. The part
// before " - " is kept and cut to 20 characters plus "...".
func LabelFromTitle(title string, index int) string {
	short, _, _ := strings.Cut(title, " - ")
	short = strings.TrimSpace(short)
	if short == "" {
		short = "clip"
	}
	if r := []rune(short); len(r) > config.LabelTitleLength {
		short = string(r[:config.LabelTitleLength]) + "..."
	}
	return fmt.Sprintf("%d. %s", index+1, strings.ToUpper(short))
}

func cleanLine(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "*_#`")
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}
