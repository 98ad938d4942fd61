package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ketengan-Diffusion/Gemini-Transcriber/internal/infrastructure/media"
	"github.com/Ketengan-Diffusion/Gemini-Transcriber/internal/infrastructure/storage"
	usecase "github.com/Ketengan-Diffusion/Gemini-Transcriber/internal/usecase/transcription"
	pkgai "github.com/Ketengan-Diffusion/Gemini-Transcriber/pkg/ai"
	"github.com/Ketengan-Diffusion/Gemini-Transcriber/pkg/config"
)

var (
	flagOutputDir      string
	flagSegmentSeconds int
	flagWorkers        int
	flagModel          string
	flagMaxRetries     int
)

var rootCmd = &cobra.Command{
	Use:   "transcriber <audio-file>",
	Short: "Transcribe an audio file into a timestamped transcript and SRT subtitles",
	Long: `Transcriber cuts an audio file into fixed-length segments, transcribes
each segment with Gemini, and writes a plain transcript plus a cleaned-up
SRT subtitle file to the output directory.`,
	Args: cobra.ExactArgs(1),
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVarP(&flagOutputDir, "output", "o", "", "output directory (default from OUTPUT_DIR)")
	rootCmd.Flags().IntVar(&flagSegmentSeconds, "segment-seconds", 0, "segment length in seconds (default from SEGMENT_SECONDS)")
	rootCmd.Flags().IntVar(&flagWorkers, "workers", 0, "concurrent segment transcriptions (default from PIPELINE_WORKERS)")
	rootCmd.Flags().StringVar(&flagModel, "model", "", "Gemini model name (default from GEMINI_MODEL)")
	rootCmd.Flags().IntVar(&flagMaxRetries, "max-retries", -1, "retries per segment (default from GEMINI_MAX_RETRIES)")
}

func run(cmd *cobra.Command, args []string) error {
	audioPath := args[0]
	if _, err := os.Stat(audioPath); err != nil {
		return fmt.Errorf("audio file %s: %w", audioPath, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flagOutputDir != "" {
		cfg.Output.Dir = flagOutputDir
	}
	if flagSegmentSeconds > 0 {
		cfg.Pipeline.SegmentSeconds = flagSegmentSeconds
	}
	if flagWorkers > 0 {
		cfg.Pipeline.Workers = flagWorkers
	}
	if flagModel != "" {
		cfg.Gemini.Model = flagModel
	}
	if flagMaxRetries >= 0 {
		cfg.Gemini.MaxRetries = flagMaxRetries
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	outputs, err := storage.NewOutputWriter(cfg.Output.Dir)
	if err != nil {
		return err
	}

	segmenter := media.NewSegmenter(cfg.Pipeline.FFmpegPath, cfg.Pipeline.SegmentSeconds, logger)
	geminiClient := pkgai.NewGeminiClient(&cfg.Gemini)
	transcriber := usecase.NewGeminiChunkTranscriber(geminiClient, cfg.Gemini.MaxRetries, logger)
	service := usecase.NewService(segmenter, transcriber, outputs, cfg.Pipeline.Workers, logger, usecase.Options{})

	result, err := service.Transcribe(cmd.Context(), usecase.Request{
		AudioPath:  audioPath,
		SourceName: audioPath,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Transcript: %s\n", result.TranscriptFile)
	fmt.Printf("Subtitles:  %s\n", result.SubtitleFile)
	fmt.Printf("Chunks: %d, entries: %d\n", result.ChunkCount, len(result.Entries))
	for _, d := range result.Diagnostics {
		fmt.Printf("warning (%s, chunk %d): %s\n", d.Stage, d.ChunkIndex, d.Detail)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
