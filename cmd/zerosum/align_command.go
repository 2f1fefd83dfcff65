package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/iamvalenciia/zero-sum/internal/align"
	"github.com/iamvalenciia/zero-sum/internal/script"
)

func newAlignCommand(ctx *commandContext) *cobra.Command {
	var scriptPath string
	var transcriptPath string
	var outputPath string
	var preview bool

	cmd := &cobra.Command{
		Use:   "align",
		Short: "Align a dialogue script against a word-level transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			_, segments, err := alignInputs(cfg, logger, scriptPath, transcriptPath)
			if err != nil {
				return err
			}

			if preview {
				renderAlignTable(segments)
			}
			if outputPath != "" {
				if err := script.SaveAligned(outputPath, segments); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Aligned %d segments -> %s\n", len(segments), outputPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&scriptPath, "script", "", "Path to the dialogue script JSON")
	cmd.Flags().StringVar(&transcriptPath, "transcript", "", "Path to the word-level transcript JSON")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the aligned segments to this file")
	cmd.Flags().BoolVar(&preview, "preview", false, "Print a per-segment alignment table")
	_ = cmd.MarkFlagRequired("script")
	_ = cmd.MarkFlagRequired("transcript")

	return cmd
}

func renderAlignTable(segments []script.Segment) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "Character", "Alignment", "Text"})
	for _, seg := range segments {
		text := seg.Text
		if len(text) > 48 {
			text = text[:45] + "..."
		}
		t.AppendRow(table.Row{seg.Index, seg.Character.String(), align.Describe(seg), text})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}
