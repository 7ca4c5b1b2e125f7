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
	"github.com/jrsteele09/go-crm/auth"
	crmmongorepo "github.com/jrsteele09/go-crm/crm/mongorepo"
	"github.com/jrsteele09/go-crm/internal/config"
	"github.com/jrsteele09/go-crm/internal/database"
	"github.com/jrsteele09/go-crm/internal/logging"
	"github.com/jrsteele09/go-crm/server"
	"github.com/jrsteele09/go-crm/server/countcache"
	"github.com/jrsteele09/go-crm/token"
	"github.com/jrsteele09/go-crm/token/jwt"
	"github.com/jrsteele09/go-crm/token/refresh"
	refreshmongorepo "github.com/jrsteele09/go-crm/token/refresh/mongorepo"
	mongouserrepo "github.com/jrsteele09/go-crm/users/mongorepo"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return err
	}
	logging.Setup(c.GetEnv(), c.GetLogLevel(), os.Stderr)
	displayAppname(c.GetAppName())

	ctx := context.Background()
	client, db, err := database.Connect(ctx, c.GetMongoURI(), c.GetMongoDatabase(), c.GetConnectTimeout())
	if err != nil {
		// No retry: the process cannot serve anything without its database
		log.Fatal().Err(err).Str("uri", c.GetMongoURI()).Msg("MongoDB connection error")
	}
	defer disconnect(client)
	log.Info().Str("database", c.GetMongoDatabase()).Msg("MongoDB connected")

	handler, closeCache, err := newServer(ctx, c, db)
	if err != nil {
		return err
	}
	defer closeCache()

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler}
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(httpServer) }()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func newServer(ctx context.Context, c config.Config, db *mongo.Database) (*server.Server, func(), error) {
	users := mongouserrepo.New(db)
	refreshTokens := refreshmongorepo.New(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		return nil, nil, err
	}
	if err := refreshTokens.EnsureIndexes(ctx); err != nil {
		return nil, nil, err
	}

	accounts, err := auth.NewAccountService(
		users,
		jwt.NewCreator(c, token.NewHMACSigner(c.GetJWTSecret())),
		refresh.NewManager(refreshTokens, c),
	)
	if err != nil {
		return nil, nil, err
	}

	var options []server.ServerOption
	closeCache := func() {}
	if rdb := connectRedis(ctx, c); rdb != nil {
		options = append(options, server.WithCountCache(countcache.New(rdb, c.GetCountCacheTTL())))
		closeCache = func() { _ = rdb.Close() }
	}

	s, err := server.New(c, accounts, server.Repos{
		Leads:     crmmongorepo.NewLeadRepo(db),
		Employees: crmmongorepo.NewEmployeeRepo(db),
	}, options...)
	if err != nil {
		closeCache()
		return nil, nil, err
	}
	return s, closeCache, nil
}

// connectRedis returns nil when no address is configured or Redis is unreachable;
// the counts are then served straight from MongoDB.
func connectRedis(ctx context.Context, c config.DatabaseConfig) *redis.Client {
	if c.GetRedisAddr() == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     c.GetRedisAddr(),
		Password: c.GetRedisPassword(),
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", c.GetRedisAddr()).Msg("Redis unavailable, count cache disabled")
		_ = rdb.Close()
		return nil
	}
	log.Info().Str("addr", c.GetRedisAddr()).Msg("Redis count cache enabled")
	return rdb
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func disconnect(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		log.Err(err).Msg("MongoDB disconnect")
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
