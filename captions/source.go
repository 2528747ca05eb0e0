// Package captions produces per-clip overlay captions and the overall video
// title, either from clip transcripts or from clip metadata.
package captions

import (
	"context"
	"fmt"
	"log"
	"strings"

	"shortsbot/config"
	"shortsbot/types"
)

// Source produces a CaptionSet for downloaded clips
type Source interface {
	Name() string
	Captions(ctx context.Context, clips []types.LocalClip) (types.CaptionSet, error)
}

// ClipTranscriber transcribes clips in order. Failed clips yield empty text.
type ClipTranscriber interface {
	TranscribeAll(ctx context.Context, clips []types.LocalClip) []types.Transcript
}

// TranscriptSource transcribes every clip and asks a Generator for captions
// and a title. Generation errors are returned to the caller.
type TranscriptSource struct {
	name        string
	transcriber ClipTranscriber
	gen         Generator
}

// NewTranscriptSource uses hosted transcription and generation
func NewTranscriptSource(t ClipTranscriber, gen Generator) *TranscriptSource {
	return &TranscriptSource{name: "transcript", transcriber: t, gen: gen}
}

// NewLocalSource uses a local transcriber and model. Progress reporting is
// done by the wrapped backends.
func NewLocalSource(t ClipTranscriber, gen Generator) *TranscriptSource {
	return &TranscriptSource{name: "local", transcriber: t, gen: gen}
}

// Name implements Source
func (s *TranscriptSource) Name() string { return s.name }

// Captions implements Source
func (s *TranscriptSource) Captions(ctx context.Context, clips []types.LocalClip) (types.CaptionSet, error) {
	transcripts := s.transcriber.TranscribeAll(ctx, clips)
	byID := make(map[string]string, len(transcripts))
	for _, tr := range transcripts {
		byID[tr.ClipID] = tr.Text
	}

	ids := clipIDs(clips)
	texts := make([]string, len(clips))
	for i, id := range ids {
		texts[i] = byID[id]
	}

	log.Printf("✍️  Generating %d captions with %s", len(clips), s.gen.ModelName())
	raw, err := s.gen.Generate(ctx, systemPrompt, captionPrompt(texts))
	if err != nil {
		return types.CaptionSet{}, fmt.Errorf("caption generation failed: %w", err)
	}
	set := ParseCaptions(raw, ids)

	rawTitle, err := s.gen.Generate(ctx, "", titlePrompt(texts))
	if err != nil {
		return types.CaptionSet{}, fmt.Errorf("title generation failed: %w", err)
	}
	set.MainTitle = NormalizeTitle(rawTitle)
	if set.MainTitle == "" {
		set.MainTitle = fallbackTitle(len(clips))
	}
	log.Printf("🎯 Generated main title: %s", set.MainTitle)
	return set, nil
}

// MetadataSource skips transcription and seeds generation with each clip's
// title and description. Without a generator, or when generation yields
// nothing, captions are synthesized from clip titles.
type MetadataSource struct {
	gen Generator
}

// NewMetadataSource creates a metadata source. gen may be nil.
func NewMetadataSource(gen Generator) *MetadataSource {
	return &MetadataSource{gen: gen}
}

// Name implements Source
func (s *MetadataSource) Name() string { return "metadata" }

// Captions implements Source
func (s *MetadataSource) Captions(ctx context.Context, clips []types.LocalClip) (types.CaptionSet, error) {
	ids := clipIDs(clips)
	hints := make([]string, len(clips))
	for i, c := range clips {
		hints[i] = metadataHint(c)
	}

	set, ok := s.generate(ctx, ids, hints)
	if !ok {
		set = labelSet(clips)
	}
	if set.MainTitle == "" {
		set.MainTitle = fallbackTitle(len(clips))
	}
	log.Printf("🎯 Main title: %s", set.MainTitle)
	return set, nil
}

func (s *MetadataSource) generate(ctx context.Context, ids, hints []string) (types.CaptionSet, bool) {
	if s.gen == nil {
		return types.CaptionSet{}, false
	}

	raw, err := s.gen.Generate(ctx, systemPrompt, captionPrompt(hints))
	if err != nil || strings.TrimSpace(raw) == "" {
		log.Printf("⚠️  Caption generation returned nothing, using clip titles: %v", err)
		return types.CaptionSet{}, false
	}
	set := ParseCaptions(raw, ids)

	rawTitle, err := s.gen.Generate(ctx, "", titlePrompt(hints))
	if err != nil {
		log.Printf("⚠️  Title generation failed: %v", err)
	}
	set.MainTitle = NormalizeTitle(rawTitle)
	return set, true
}

func labelSet(clips []types.LocalClip) types.CaptionSet {
	set := types.CaptionSet{
		Ordered:  make([]string, len(clips)),
		Captions: make(map[string]string, len(clips)),
	}
	for i, c := range clips {
		label := LabelFromTitle(c.Title, i)
		set.Ordered[i] = label
		set.Captions[c.ID] = label
	}
	return set
}

func metadataHint(c types.LocalClip) string {
	hint := strings.TrimSpace(c.Title)
	desc := strings.TrimSpace(c.Description)
	if r := []rune(desc); len(r) > config.MetadataHintChars {
		desc = strings.TrimSpace(string(r[:config.MetadataHintChars]))
	}
	if desc != "" {
		hint += " - " + desc
	}
	return hint
}

func fallbackTitle(n int) string {
	return fmt.Sprintf("TOP %d VIRAL CLIPS", n)
}

func clipIDs(clips []types.LocalClip) []string {
	ids := make([]string, len(clips))
	for i, c := range clips {
		ids[i] = c.ID
	}
	return ids
}
