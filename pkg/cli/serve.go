package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/campus-pulse/pulse/pkg/cli/config"
	controller "github.com/campus-pulse/pulse/pkg/controller/http"
	"github.com/campus-pulse/pulse/pkg/service/triage"
	"github.com/campus-pulse/pulse/pkg/usecase"
)

func cmdServe() *cli.Command {
	var (
		serverCfg    config.Server
		firestoreCfg config.Firestore
		geminiCfg    config.Gemini
		rulesCfg     config.Rules
	)

	flags := joinFlags(
		serverCfg.Flags(),
		firestoreCfg.Flags(),
		geminiCfg.Flags(),
		rulesCfg.Flags(),
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Start HTTP server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting pulse server",
				slog.Any("server", serverCfg),
				slog.Any("firestore", firestoreCfg),
				slog.Any("gemini", geminiCfg),
				slog.Any("rules", rulesCfg),
			)

			rules, err := rulesCfg.Load()
			if err != nil {
				return err
			}

			repo, err := firestoreCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return err
			}

			triageClient := triage.New(llmClient)

			uc := usecase.New(repo, triageClient,
				usecase.WithSpamThreshold(serverCfg.SpamThreshold),
				usecase.WithRoutingRules(rules.Routing),
				usecase.WithScoringRules(rules.Scoring),
			)

			if err := uc.SeedDirectory(ctx, rules.Locations); err != nil {
				return goerr.Wrap(err, "failed to seed directory")
			}

			server := controller.NewServer(ctx, serverCfg.Addr, uc, triageClient)

			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
