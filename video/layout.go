package video

import (
	"fmt"
	"log"
	"math"

	"shortsbot/config"
	"shortsbot/types"
)

// DynamicFontSize shrinks base for text longer than limit, never below 80% of base
func DynamicFontSize(text string, base, limit int) int {
	n := len([]rune(text))
	if n <= limit || n == 0 {
		return base
	}
	scale := 0.8 + 0.2*math.Min(1, float64(limit)/float64(n))
	return int(float64(base) * scale)
}

// Corner positions for caption overlays
const (
	TopLeft     = "top-left"
	TopRight    = "top-right"
	BottomLeft  = "bottom-left"
	BottomRight = "bottom-right"
)

// CornerPosition returns drawtext x and y expressions for a corner
func CornerPosition(corner string, margin int) (x, y string) {
	left := fmt.Sprintf("%d", margin)
	right := fmt.Sprintf("w-text_w-%d", margin)
	top := fmt.Sprintf("%d", margin)
	bottom := fmt.Sprintf("h-text_h-%d", margin)

	switch corner {
	case TopRight:
		return right, top
	case BottomLeft:
		return left, bottom
	case BottomRight:
		return right, bottom
	default:
		return left, top
	}
}

// TrimPolicy decides how much of a clip to use given the remaining budget.
// ok=false ends acceptance.
type TrimPolicy interface {
	Name() string
	Take(duration, remaining float64) (take float64, ok bool)
}

// CappedPolicy uses at most 15s of each clip
type CappedPolicy struct{}

func (CappedPolicy) Name() string { return "capped" }

func (CappedPolicy) Take(duration, remaining float64) (float64, bool) {
	take := math.Min(duration, math.Min(config.CappedClipSeconds, remaining))
	return take, take > 0
}

// BudgetPolicy cuts clips longer than 40s to 25s, then fits the remaining budget
type BudgetPolicy struct{}

func (BudgetPolicy) Name() string { return "budget" }

func (BudgetPolicy) Take(duration, remaining float64) (float64, bool) {
	take := duration
	if take > config.BudgetLongClipSeconds {
		take = config.BudgetTrimSeconds
	}
	take = math.Min(take, remaining)
	return take, take > 0
}

// WholePolicy only accepts clips that fit entirely
type WholePolicy struct{}

func (WholePolicy) Name() string { return "whole" }

func (WholePolicy) Take(duration, remaining float64) (float64, bool) {
	if duration <= 0 || duration > remaining {
		return 0, false
	}
	return duration, true
}

// NewTrimPolicy resolves a policy by name. An empty name picks the default
// for the caption source: budget for metadata, capped otherwise.
func NewTrimPolicy(name, captionSource string) (TrimPolicy, error) {
	if name == "" {
		if captionSource == "metadata" {
			name = "budget"
		} else {
			name = "capped"
		}
	}
	switch name {
	case "capped":
		return CappedPolicy{}, nil
	case "budget":
		return BudgetPolicy{}, nil
	case "whole":
		return WholePolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown trim policy: %s", name)
	}
}

// ProbedClip is a downloaded clip with its source duration
type ProbedClip struct {
	Clip     types.LocalClip
	Duration float64
	HasAudio bool
}

// ClipPlan is an accepted clip and how many seconds of it to use
type ClipPlan struct {
	ProbedClip
	Take float64
}

// PlanClips accepts clips in order until the ceiling is used up
func PlanClips(clips []ProbedClip, policy TrimPolicy, ceiling float64) []ClipPlan {
	var plans []ClipPlan
	remaining := ceiling
	for _, c := range clips {
		if remaining <= 0 {
			break
		}
		take, ok := policy.Take(c.Duration, remaining)
		if !ok {
			log.Printf("⏭️  Clip %s (%.1fs) does not fit the remaining %.1fs", c.Clip.ID, c.Duration, remaining)
			break
		}
		plans = append(plans, ClipPlan{ProbedClip: c, Take: take})
		remaining -= take
	}
	return plans
}
