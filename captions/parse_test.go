package captions

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseCaptionsNumberedOutOfOrder(t *testing.T) {
	raw := "2. SECOND ONE\n1. FIRST ONE\n3) third one"
	set := ParseCaptions(raw, []string{"a", "b", "c"})

	want := []string{"FIRST ONE", "SECOND ONE", "third one"}
	if !reflect.DeepEqual(set.Ordered, want) {
		t.Fatalf("Ordered = %v; want %v", set.Ordered, want)
	}
	if set.Captions["b"] != "SECOND ONE" {
		t.Fatalf("caption for b = %q", set.Captions["b"])
	}
}

func TestParseCaptionsFallbackSlots(t *testing.T) {
	set := ParseCaptions("1. ONLY ONE", []string{"a", "b", "c"})
	want := []string{"ONLY ONE", "CLIP 2", "CLIP 3"}
	if !reflect.DeepEqual(set.Ordered, want) {
		t.Fatalf("Ordered = %v; want %v", set.Ordered, want)
	}
	if set.Captions["c"] != "CLIP 3" {
		t.Fatalf("caption for c = %q", set.Captions["c"])
	}

	empty := ParseCaptions("", []string{"x", "y"})
	if !reflect.DeepEqual(empty.Ordered, []string{"CLIP 1", "CLIP 2"}) {
		t.Fatalf("empty output = %v", empty.Ordered)
	}
}

func TestParseCaptionsUnnumberedFillNextFree(t *testing.T) {
	raw := "Here you go:\n\n2. BOUND TO TWO\n**funny cat**\n"
	set := ParseCaptions(raw, []string{"a", "b", "c"})
	want := []string{"Here you go:", "BOUND TO TWO", "funny cat"}
	if !reflect.DeepEqual(set.Ordered, want) {
		t.Fatalf("Ordered = %v; want %v", set.Ordered, want)
	}
}

func TestParseCaptionsExtraLinesAndBadNumbers(t *testing.T) {
	raw := "1. A\n1. DUPLICATE\n9. OUT OF RANGE\n2. B"
	set := ParseCaptions(raw, []string{"a", "b", "c"})
	want := []string{"A", "B", "DUPLICATE"}
	if !reflect.DeepEqual(set.Ordered, want) {
		t.Fatalf("Ordered = %v; want %v", set.Ordered, want)
	}
}

func TestNormalizeTitle(t *testing.T) {
	if got := NormalizeTitle("\n  \"top 5 fails (gone wrong)\"\nextra"); got != "TOP 5 FAILS (GONE WRONG)" {
		t.Fatalf("NormalizeTitle = %q", got)
	}
	long := NormalizeTitle(strings.Repeat("a", 150))
	if len(long) != 100 || long != strings.Repeat("A", 100) {
		t.Fatalf("long title not truncated: %d", len(long))
	}
}

func TestLabelFromTitle(t *testing.T) {
	cases := []struct {
		title string
		index int
		want  string
	}{
		{"I need money - Funny Channel", 3, "4. I NEED MONEY"},
		{"This title is definitely too long", 0, "1. THIS TITLE IS DEFINI..."},
		{"", 1, "2. CLIP"},
	}
	for _, c := range cases {
		if got := LabelFromTitle(c.title, c.index); got != c.want {
			t.Errorf("LabelFromTitle(%q, %d) = %q; want %q", c.title, c.index, got, c.want)
		}
	}
}
