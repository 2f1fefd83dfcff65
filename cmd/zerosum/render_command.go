package main

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/iamvalenciia/zero-sum/internal/assets"
	"github.com/iamvalenciia/zero-sum/internal/logging"
	"github.com/iamvalenciia/zero-sum/internal/render"
	"github.com/iamvalenciia/zero-sum/internal/services"
	"github.com/iamvalenciia/zero-sum/internal/timeline"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var scriptPath string
	var transcriptPath string
	var audioPath string
	var musicPath string
	var outputPath string
	var titleOverride string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a dialogue script and narration into a finished video",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			renderID := uuid.NewString()
			runCtx := services.WithRenderID(cmd.Context(), renderID)
			log := logging.WithContext(runCtx, logger)

			doc, segments, err := alignInputs(cfg, log, scriptPath, transcriptPath)
			if err != nil {
				return err
			}

			title := doc.Title
			if titleOverride != "" {
				title = titleOverride
			}

			registry, err := assets.LoadRegistry(cfg.Paths.AssetsDir, log)
			if err != nil {
				return err
			}
			tl, err := timeline.NewBuilder(cfg, registry, log).Build(title, segments)
			if err != nil {
				return err
			}

			if outputPath == "" {
				outputPath = filepath.Join(cfg.Paths.OutputDir, "episode.mp4")
			}

			result, err := render.New(cfg, log).Render(runCtx, render.Params{
				Timeline:      tl,
				NarrationPath: audioPath,
				MusicPath:     musicPath,
				OutputPath:    outputPath,
				RenderID:      renderID,
			})
			if err != nil {
				return err
			}

			if result.VideoOnly {
				fmt.Fprintf(cmd.OutOrStdout(), "Audio mux failed; silent video kept at %s\n", result.OutputPath)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Rendered %d frames (%.1fs, %s) -> %s\n",
					result.Frames, result.Duration, result.Codec, result.OutputPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&scriptPath, "script", "", "Path to the dialogue script JSON")
	cmd.Flags().StringVar(&transcriptPath, "transcript", "", "Path to the word-level transcript JSON")
	cmd.Flags().StringVar(&audioPath, "audio", "", "Path to the narration audio track")
	cmd.Flags().StringVar(&musicPath, "music", "", "Optional background music track")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output video path")
	cmd.Flags().StringVar(&titleOverride, "title", "", "Override the script title")
	_ = cmd.MarkFlagRequired("script")
	_ = cmd.MarkFlagRequired("transcript")
	_ = cmd.MarkFlagRequired("audio")

	return cmd
}
