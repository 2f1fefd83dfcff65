package script

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/iamvalenciia/zero-sum/internal/services"
)

// Script is the authored input document.
type Script struct {
	Title    string
	Segments []Segment
}

type scriptFile struct {
	Title    string            `json:"title"`
	Segments []scriptFileEntry `json:"segments"`
}

type scriptFileEntry struct {
	Character     string        `json:"character"`
	Text          string        `json:"text"`
	Poses         []PoseSpan    `json:"poses"`
	Illustrations []VisualAsset `json:"illustrations"`
}

type transcriptFile struct {
	Words []Word `json:"words"`
}

// LoadScript reads and validates the authored dialogue script. Unknown
// characters and out-of-range pose spans fail the load; an empty segment
// list is a fatal input.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrFatalInput, "script", "load", "read script file", err)
	}

	var file scriptFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, services.Wrap(services.ErrFatalInput, "script", "load", "parse script file", err)
	}
	if len(file.Segments) == 0 {
		return nil, services.Wrap(services.ErrFatalInput, "script", "load", "script has no segments", nil)
	}

	out := &Script{Title: strings.TrimSpace(file.Title)}
	for i, entry := range file.Segments {
		seg, err := buildSegment(i, entry)
		if err != nil {
			return nil, err
		}
		out.Segments = append(out.Segments, seg)
	}
	return out, nil
}

func buildSegment(index int, entry scriptFileEntry) (Segment, error) {
	character, err := ParseCharacter(entry.Character)
	if err != nil {
		return Segment{}, err
	}

	text := strings.TrimSpace(entry.Text)
	if text == "" {
		return Segment{}, services.Wrap(services.ErrValidation, "script", "load",
			fmt.Sprintf("segment %d has empty text", index), nil)
	}

	seg := Segment{
		Index:     index,
		Character: character,
		Text:      text,
		Poses:     append([]PoseSpan(nil), entry.Poses...),
		Assets:    append([]VisualAsset(nil), entry.Illustrations...),
	}

	wordCount := len(seg.ScriptWords())
	for _, span := range seg.Poses {
		if strings.TrimSpace(span.Pose) == "" {
			return Segment{}, services.Wrap(services.ErrValidation, "script", "load",
				fmt.Sprintf("segment %d has pose span with empty pose", index), nil)
		}
		if span.StartWord < 0 || span.EndWord < span.StartWord || span.StartWord >= wordCount {
			return Segment{}, services.Wrap(services.ErrValidation, "script", "load",
				fmt.Sprintf("segment %d pose %q covers words [%d,%d] of %d", index, span.Pose, span.StartWord, span.EndWord, wordCount), nil)
		}
	}
	sort.SliceStable(seg.Poses, func(a, b int) bool { return seg.Poses[a].StartWord < seg.Poses[b].StartWord })

	for _, asset := range seg.Assets {
		if strings.TrimSpace(asset.ID) == "" {
			return Segment{}, services.Wrap(services.ErrValidation, "script", "load",
				fmt.Sprintf("segment %d has illustration with empty id", index), nil)
		}
	}

	return seg, nil
}

// LoadTranscript reads the recognized word list. Words with non-positive
// spans are kept (downstream clamps them); an empty list is a fatal input.
func LoadTranscript(path string) ([]Word, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrFatalInput, "script", "load", "read transcript file", err)
	}

	var file transcriptFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, services.Wrap(services.ErrFatalInput, "script", "load", "parse transcript file", err)
	}
	if len(file.Words) == 0 {
		return nil, services.Wrap(services.ErrFatalInput, "script", "load", "transcript has no words", nil)
	}

	prev := 0.0
	for i, w := range file.Words {
		if strings.TrimSpace(w.Text) == "" {
			return nil, services.Wrap(services.ErrValidation, "script", "load",
				fmt.Sprintf("transcript word %d is empty", i), nil)
		}
		if w.End < w.Start-Epsilon {
			return nil, services.Wrap(services.ErrValidation, "script", "load",
				fmt.Sprintf("transcript word %d ends before it starts", i), nil)
		}
		if w.Start < prev-Epsilon {
			return nil, services.Wrap(services.ErrValidation, "script", "load",
				fmt.Sprintf("transcript word %d starts before its predecessor", i), nil)
		}
		prev = w.Start
	}

	return file.Words, nil
}

// SaveAligned writes the enriched segment structure as JSON for downstream
// consumers.
func SaveAligned(path string, segments []Segment) error {
	type alignedSegment struct {
		Index     int           `json:"index"`
		Character string        `json:"character"`
		Text      string        `json:"text"`
		Start     float64       `json:"start"`
		End       float64       `json:"end"`
		Words     []Word        `json:"words"`
		Poses     []PoseSpan    `json:"poses,omitempty"`
		Assets    []VisualAsset `json:"illustrations,omitempty"`
	}

	out := make([]alignedSegment, 0, len(segments))
	for _, seg := range segments {
		out = append(out, alignedSegment{
			Index:     seg.Index,
			Character: seg.Character.String(),
			Text:      seg.Text,
			Start:     seg.Start,
			End:       seg.End,
			Words:     seg.Words,
			Poses:     seg.Poses,
			Assets:    seg.Assets,
		})
	}

	data, err := json.MarshalIndent(struct {
		Segments []alignedSegment `json:"segments"`
	}{Segments: out}, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrValidation, "script", "save aligned", "marshal segments", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return services.Wrap(services.ErrExternalTool, "script", "save aligned", "write file", err)
	}
	return nil
}
