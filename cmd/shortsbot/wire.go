package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"shortsbot/captions"
	"shortsbot/common"
	"shortsbot/config"
	"shortsbot/downloader"
	"shortsbot/finder"
	"shortsbot/ledger"
	"shortsbot/pipeline"
	"shortsbot/transcribe"
	"shortsbot/uploader"
	"shortsbot/video"
)

// signIn selects when the uploader runs the OAuth flow
type signIn int

const (
	// signInAtStart authorizes while the pipeline is built, for long-running triggers
	signInAtStart signIn = iota
	// signInOnUpload defers authorization to the first upload
	signInOnUpload
)

// buildPipeline constructs every stage from cfg. The returned cleanup
// closes the ledger.
func buildPipeline(ctx context.Context, cfg config.Config, mode signIn) (*pipeline.Pipeline, func(), error) {
	cleanup := func() {}
	state := pipeline.NewManager()

	dl := downloader.New(downloader.Config{
		Path:         cfg.YtDlpPath,
		CookiesFile:  cfg.YtDlpCookiesFile,
		TikTokCookie: cfg.TikTokCookie,
		Dir:          cfg.DownloadDir,
	})

	var finderOpts []finder.Option
	if cfg.UseLedger {
		l, err := ledger.Open(ledger.Options{
			Backend:   cfg.LedgerBackend,
			Path:      cfg.LedgerPath,
			RedisAddr: cfg.RedisAddr,
			RedisPass: cfg.RedisPass,
			Key:       cfg.LedgerKey,
		})
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to open ledger: %w", err)
		}
		cleanup = func() { _ = l.Close() }
		finderOpts = append(finderOpts, finder.WithLedger(l))
	}

	yt, err := finder.NewYouTubeSource(ctx, cfg.YouTubeAPIKey)
	if err != nil {
		return nil, cleanup, err
	}
	sources := []finder.Source{yt}
	if len(cfg.RedditSubreddits) > 0 {
		sources = append(sources, finder.NewRedditSource(cfg.RedditSubreddits, dl))
	}
	selector := finder.NewSelector(cfg.SelectionPolicy, rand.New(rand.NewSource(time.Now().UnixNano())))
	clipFinder := finder.New(sources, selector, finder.NewRecency(cfg.RecencyPolicy), finderOpts...)

	var policy video.TrimPolicy
	if cfg.TrimPolicy != "" {
		if policy, err = video.NewTrimPolicy(cfg.TrimPolicy, cfg.CaptionSource); err != nil {
			return nil, cleanup, err
		}
	}
	renderer := video.NewFFmpegRenderer(cfg.AllowCropping, cfg.CaptionCorner)
	composer := video.NewComposer(renderer, policy, cfg.MaxTotalDuration, cfg.OutputDir).
		WithStageHook(state.SetState)

	deps := pipeline.Deps{
		Finder:     clipFinder,
		Downloader: dl,
		Composer:   composer,
		Sources:    buildCaptionSources(cfg),
	}

	if up := buildUploader(ctx, cfg, mode, func(ctx context.Context) (*uploader.Uploader, error) {
		return newUploader(ctx, cfg)
	}); up != nil {
		deps.Uploader = up
	}

	if cfg.ArchiveEnabled() {
		store, err := common.NewS3(ctx, common.S3Config{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			Profile:      cfg.S3Profile,
			UsePathStyle: cfg.S3UsePathStyle,
		})
		if err != nil {
			return nil, cleanup, err
		}
		deps.Archiver = pipeline.NewS3Archiver(store, cfg.S3Prefix)
		log.Printf("📦 Archiving runs to s3://%s/%s", cfg.S3Bucket, cfg.S3Prefix)
	}

	opts := pipeline.Options{
		Query: finder.Query{
			Tags:       cfg.SearchTags,
			MaxResults: cfg.SearchMaxResults,
			Ceiling:    cfg.MaxTotalDuration,
			MinClips:   cfg.MinClips,
			MaxClips:   cfg.MaxClips,
			MinLikes:   cfg.MinLikes,
		},
		CaptionSource: cfg.CaptionSource,
		OutputName:    cfg.OutputFilename,
		Upload: uploader.Metadata{
			CategoryID: cfg.UploadCategoryID,
			Privacy:    cfg.UploadPrivacy,
		},
	}
	return pipeline.New(deps, opts, state), cleanup, nil
}

// buildCaptionSources registers every caption source the configuration can support
func buildCaptionSources(cfg config.Config) map[string]captions.Source {
	sources := make(map[string]captions.Source)

	gen, err := captions.NewGenerator(captions.GeneratorConfig{
		Provider:     cfg.TextProvider,
		OpenAIAPIKey: cfg.OpenAIAPIKey,
		OpenAIModel:  cfg.OpenAITextModel,
		CohereAPIKey: cfg.CohereAPIKey,
		CohereModel:  cfg.CohereModel,
	})
	if err != nil {
		log.Printf("⚠️  Text generation unavailable, metadata captions use clip titles: %v", err)
	}
	sources["metadata"] = captions.NewMetadataSource(gen)

	switch {
	case gen == nil:
		log.Println("⚠️  transcript captions disabled: no text generator")
	case cfg.OpenAIAPIKey == "":
		log.Println("⚠️  transcript captions disabled: OPENAI_API_KEY is required for transcription")
	default:
		svc := transcribe.NewService(transcribe.NewOpenAIBackend(cfg.OpenAIAPIKey, cfg.OpenAITranscribeModel))
		sources["transcript"] = captions.NewTranscriptSource(svc, gen)
	}

	whisper := transcribe.WithProgress(
		transcribe.NewWhisperCPPBackend(cfg.WhisperBin, cfg.WhisperModel),
		common.LogProgress,
		config.ProgressTick,
	)
	sources["local"] = captions.NewLocalSource(
		transcribe.NewService(whisper),
		captions.NewLocalGenerator(cfg.OllamaURL, cfg.LocalModel, common.LogProgress),
	)

	return sources
}

// buildUploader returns nil in video-only mode
func buildUploader(ctx context.Context, cfg config.Config, mode signIn, connect uploader.Connector) pipeline.Uploader {
	if !cfg.UploadEnabled() {
		log.Println("⚠️  No client secrets file, running in video-only mode")
		return nil
	}
	if mode == signInOnUpload {
		return uploader.NewLazyUploader(connect)
	}
	up, err := connect(ctx)
	if err != nil {
		log.Printf("⚠️  Upload disabled: %v", err)
		return nil
	}
	return up
}

func newUploader(ctx context.Context, cfg config.Config) (*uploader.Uploader, error) {
	auth := uploader.NewAuthenticator(cfg.ClientSecretsFile, cfg.TokenFile)
	client, err := auth.Client(ctx)
	if err != nil {
		return nil, err
	}
	return uploader.NewUploader(ctx, client)
}

func isBusy(err error) bool {
	return errors.Is(err, pipeline.ErrBusy)
}
