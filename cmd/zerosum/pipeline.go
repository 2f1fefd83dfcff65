package main

import (
	"log/slog"

	"github.com/iamvalenciia/zero-sum/internal/align"
	"github.com/iamvalenciia/zero-sum/internal/config"
	"github.com/iamvalenciia/zero-sum/internal/script"
	"github.com/iamvalenciia/zero-sum/internal/textnorm"
)

// alignInputs loads the script and transcript, repairs fragmented transcript
// tokens, and aligns the segments. Both the align and render commands share
// this front half of the pipeline.
func alignInputs(cfg *config.Config, logger *slog.Logger, scriptPath, transcriptPath string) (*script.Script, []script.Segment, error) {
	doc, err := script.LoadScript(scriptPath)
	if err != nil {
		return nil, nil, err
	}
	words, err := script.LoadTranscript(transcriptPath)
	if err != nil {
		return nil, nil, err
	}
	words = textnorm.Repair(words)

	aligner := align.New(cfg.Timeline, logger)
	segments, err := aligner.Align(doc.Segments, words)
	if err != nil {
		return nil, nil, err
	}
	if err := script.ValidateAlignment(segments); err != nil {
		return nil, nil, err
	}
	return doc, segments, nil
}
