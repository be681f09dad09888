package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/dottapps/auth-gateway/authflow"
	"github.com/dottapps/auth-gateway/bridgetoken"
	"github.com/dottapps/auth-gateway/internal/config"
	"github.com/dottapps/auth-gateway/server"
	"github.com/dottapps/auth-gateway/sessionstore"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	_ = godotenv.Load()

	c := config.New()
	displayAppname(c.GetAppName())

	gateway, err := buildGateway(c)
	if err != nil {
		return fmt.Errorf("build gateway: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: gateway}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func buildGateway(c config.Config) (*server.Server, error) {
	store := sessionstore.NewHTTPClient(c.GetSessionServiceURL(), c.GetStoreTimeout())

	var (
		bridgeRepo bridgetoken.Repo
		flowRepo   authflow.Repo
	)
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr, Password: c.GetRedisPassword()})
		bridgeRepo = bridgetoken.NewRedisRepo(rdb, c.GetBridgeTokenTTL())
		flowRepo = authflow.NewRedisRepo(rdb, c.GetFlowStateTTL())
	} else {
		bridgeRepo = bridgetoken.NewInMemoryRepo(c.GetBridgeTokenTTL())
		flowRepo = authflow.NewInMemoryRepo(c.GetFlowStateTTL())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	oauth, err := server.NewOidcExchanger(ctx, c)
	if err != nil {
		return nil, err
	}

	return server.New(c, store, bridgeRepo, flowRepo, oauth)
}

func listenAndServe(httpServer *http.Server) error {
	log.Info().Str("addr", httpServer.Addr).Msg("Server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
