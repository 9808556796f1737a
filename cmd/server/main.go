// Command server runs one matching engine behind an HTTP boundary. It
// is a thin demo wiring, not part of the core: persistence,
// multi-symbol routing, and authentication are absent by design.
package main

import (
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"matchcore/httpapi"
	"matchcore/matching"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	engine := matching.New(matching.WithLogger(logger))
	server := httpapi.NewServer(engine, logger, func() int64 { return time.Now().UnixNano() })

	mux := http.NewServeMux()
	server.Routes(mux)

	addr := ":8080"
	logger.Info("matching engine listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
