package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"shortsbot/api"
	"shortsbot/config"
	"shortsbot/scheduler"
	"shortsbot/shared/kafka"
	"shortsbot/tui"
	"shortsbot/types"
	"shortsbot/uploader"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var req types.RunRequest
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			p, cleanup, err := buildPipeline(ctx, cfg, signInOnUpload)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := p.Run(ctx, req)
			if err != nil {
				return fmt.Errorf("run failed: %w", err)
			}
			log.Printf("✅ Video: %s", result.VideoPath)
			if result.VideoID != "" {
				log.Printf("📺 Uploaded: https://youtube.com/shorts/%s", result.VideoID)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&req.Tags, "tags", nil, "Search tags (overrides SEARCH_TAGS)")
	cmd.Flags().StringVar(&req.CaptionSource, "caption-source", "", "transcript, local or metadata")
	cmd.Flags().StringVar(&req.OutputName, "output", "", "Output filename")
	cmd.Flags().BoolVar(&req.SkipUpload, "skip-upload", false, "Render without uploading")
	return cmd
}

func newServeCmd() *cobra.Command {
	var withSchedule bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			p, cleanup, err := buildPipeline(ctx, cfg, signInAtStart)
			if err != nil {
				return err
			}
			defer cleanup()

			if withSchedule {
				s := scheduler.New(p, types.RunRequest{}, isBusy)
				if err := s.Add(ctx, cfg.CronSchedule); err != nil {
					return err
				}
				go s.Run(ctx)
			}

			router := api.NewRouter(ctx, p, p.State(), isBusy)
			log.Println("API endpoints available:")
			log.Println("  GET  /api/health")
			log.Println("  POST /api/runs")
			log.Println("  GET  /api/runs/current")
			return api.Serve(ctx, ":"+cfg.Port, router)
		},
	}
	cmd.Flags().BoolVar(&withSchedule, "schedule", false, "Also run the cron scheduler")
	return cmd
}

func newConsumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consume",
		Short: "Run the pipeline for each run request on the Kafka topic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			p, cleanup, err := buildPipeline(ctx, cfg, signInAtStart)
			if err != nil {
				return err
			}
			defer cleanup()

			consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
				Brokers: cfg.KafkaBrokers,
				Topic:   cfg.KafkaTopic,
				GroupID: cfg.KafkaGroupID,
				Handler: kafka.NewRunRequestHandler(p, isBusy),
			})
			if err != nil {
				return err
			}
			defer consumer.Close()
			return consumer.Run(ctx)
		},
	}
}

func newScheduleCmd() *cobra.Command {
	var schedule string
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the pipeline on a cron schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if schedule != "" {
				cfg.CronSchedule = schedule
			}
			p, cleanup, err := buildPipeline(ctx, cfg, signInAtStart)
			if err != nil {
				return err
			}
			defer cleanup()

			s := scheduler.New(p, types.RunRequest{}, isBusy)
			if err := s.Add(ctx, cfg.CronSchedule); err != nil {
				return err
			}
			s.Run(ctx)
			return nil
		},
	}
	cmd.Flags().StringVar(&schedule, "cron", "", "Cron expression (overrides CRON_SCHEDULE)")
	return cmd
}

func newUploadCmd() *cobra.Command {
	var (
		meta uploader.Metadata
		tags string
	)
	cmd := &cobra.Command{
		Use:   "upload <video>",
		Short: "Upload an existing video to YouTube",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]
			if err := ensureFileExists(path); err != nil {
				return fmt.Errorf("invalid video path: %w", err)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.UploadEnabled() {
				return errors.New("YOUTUBE_CLIENT_SECRETS_FILE is not set or unreadable")
			}

			if strings.TrimSpace(meta.Title) == "" {
				name := filepath.Base(path)
				meta.Title = strings.TrimSuffix(name, filepath.Ext(name))
			}
			meta.Tags = parseTags(tags)
			if meta.Privacy == "" {
				meta.Privacy = cfg.UploadPrivacy
			}
			if meta.CategoryID == "" {
				meta.CategoryID = cfg.UploadCategoryID
			}

			up, err := newUploader(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize uploader: %w", err)
			}
			video, err := up.Upload(ctx, path, meta)
			if err != nil {
				return err
			}
			log.Printf("✅ Upload complete: %s", video.Id)
			return nil
		},
	}
	cmd.Flags().StringVar(&meta.Title, "title", "", "Video title (defaults to the filename)")
	cmd.Flags().StringVar(&meta.Description, "description", "", "Video description")
	cmd.Flags().StringVar(&tags, "tags", "", "Comma-separated list of tags")
	cmd.Flags().StringVar(&meta.CategoryID, "category-id", "", "YouTube category ID")
	cmd.Flags().StringVar(&meta.Privacy, "privacy", "", "public, unlisted or private")
	return cmd
}

func newWatchCmd() *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch run status from a running API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if url == "" {
				url = "http://localhost:" + config.GetEnvOrDefault("PORT", config.Default().Port)
			}
			_, err := tea.NewProgram(tui.NewModel(url)).Run()
			return err
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "API base URL")
	return cmd
}

func ensureFileExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

func parseTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
