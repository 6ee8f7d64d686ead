package handler

import (
	"net/http"
	"sync"

	"lodge/config"
	"lodge/di"
	"lodge/shared/failure"
	"lodge/shared/logger"
	"lodge/transport/http/response"

	"github.com/rs/zerolog/log"
)

var (
	once    sync.Once
	server  http.Handler
	initErr error
)

// Handler serves the API from a serverless function. The dependency graph is built on
// the first request and reused while the instance stays warm.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	once.Do(func() {
		cfg := config.Get()

		logger.InitLogger()

		logger.SetLogLevel(cfg)

		server, _, initErr = di.InitializeService()
		if initErr != nil {
			log.Error().Err(initErr).Msg("Failed to initialize service")
		}
	})

	if initErr != nil {
		response.WithError(w, failure.ServiceUnavailable(initErr))

		return
	}

	server.ServeHTTP(w, r)
}
