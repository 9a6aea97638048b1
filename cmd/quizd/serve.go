// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VTuber Quiz Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/virtio/vtuber-quiz/internal/auth"
	"github.com/virtio/vtuber-quiz/internal/bilibili"
	"github.com/virtio/vtuber-quiz/internal/captcha"
	"github.com/virtio/vtuber-quiz/internal/config"
	"github.com/virtio/vtuber-quiz/internal/logging"
	"github.com/virtio/vtuber-quiz/internal/observability"
	"github.com/virtio/vtuber-quiz/internal/question"
	questionpg "github.com/virtio/vtuber-quiz/internal/question/postgres"
	"github.com/virtio/vtuber-quiz/internal/store"
	"github.com/virtio/vtuber-quiz/internal/user"
	userpg "github.com/virtio/vtuber-quiz/internal/user/postgres"
	"github.com/virtio/vtuber-quiz/pkg/errutil"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz backend",
		Long: `Start the quiz backend: connect to PostgreSQL, wire the domain
services, and expose the metrics and health endpoints.`,
		RunE: runServe,
	}
}

// Services bundles the wired domain services the API gateway consumes.
type Services struct {
	Users     *user.Service
	Questions *question.Service
	Captcha   *captcha.Verifier
}

// buildServices wires repositories and services from configuration.
func buildServices(cfg *config.Config, pool store.Pool) (*Services, error) {
	userRepo := userpg.NewUserRepository(pool)
	followRepo := userpg.NewFollowRepository(pool)
	questionRepo := questionpg.NewQuestionRepository(pool)
	voteRepo := questionpg.NewVoteRepository(pool)
	appRepo := questionpg.NewApplicationRepository(pool)

	creds := auth.NewPooledHasher(auth.NewArgon2idHasher(), cfg.Server.HashWorkers)

	var biliOpts []bilibili.Option
	if cfg.Bilibili.APIBase != "" || cfg.Bilibili.VCBase != "" {
		apiBase, vcBase := cfg.Bilibili.APIBase, cfg.Bilibili.VCBase
		if apiBase == "" {
			apiBase = bilibili.DefaultAPIBase
		}
		if vcBase == "" {
			vcBase = bilibili.DefaultVCBase
		}
		biliOpts = append(biliOpts, bilibili.WithBaseURLs(apiBase, vcBase))
	}
	biliClient := bilibili.NewClient(biliOpts...)

	users, err := user.NewService(userRepo, followRepo, creds, biliClient,
		user.WithChallengeTemplates(cfg.Challenge.Templates))
	if err != nil {
		return nil, err
	}

	questions, err := question.NewService(questionRepo, voteRepo, appRepo, userRepo, slog.Default())
	if err != nil {
		return nil, err
	}

	verifier := captcha.NewVerifier(cfg.HCaptcha.Secret, cfg.HCaptcha.SiteKey,
		captcha.WithBypass(cfg.HCaptcha.Bypass))

	return &Services{
		Users:     users,
		Questions: questions,
		Captcha:   verifier,
	}, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	logging.SetDefault("quizd", version, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer pool.Close()

	// Building the full service graph here makes wiring and configuration
	// errors fail startup instead of the first request once a transport
	// consumes the services.
	if _, err := buildServices(cfg, pool); err != nil {
		return err
	}

	obs := observability.NewServer(cfg.Server.MetricsBind, func() bool {
		return pool.Ping(ctx) == nil
	})
	errCh, err := obs.Start()
	if err != nil {
		return err
	}

	slog.Info("quizd started", "metrics_addr", obs.Addr())

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case serveErr := <-errCh:
		if serveErr != nil {
			errutil.LogError(slog.Default(), "observability server failed", serveErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := obs.Stop(shutdownCtx); err != nil {
		errutil.LogError(slog.Default(), "observability shutdown failed", err)
	}

	return nil
}
