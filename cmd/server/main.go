// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	_ "reddit-client/docs"
	"reddit-client/internal/app"
)

// @title Reddit Client API
// @version 1.0
// @description Read access to Reddit subreddits, posts, comment trees, users and search, plus a Server-Sent Events stream of new posts.
//
// @contact.name API Support
// @contact.email support@example.com
//
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
//
// @BasePath /

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.Initialize(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise application")
	}
	logger := application.Logger

	go func() {
		if err := application.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	logger.Info().Str("swagger", "http://localhost:"+application.Config.ServerPort+"/swagger/index.html").Msg("server started")

	<-ctx.Done()
	logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
		os.Exit(1)
	}

	logger.Info().Msg("server stopped")
}
