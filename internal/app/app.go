package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/dataq-tools/windaq-data-service/internal/api"
	"github.com/dataq-tools/windaq-data-service/internal/cache"
	"github.com/dataq-tools/windaq-data-service/internal/config"
)

func Run() {
	cfg := ParseCLI()

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		log.Fatal("error creating logger: ", err)
	}
	defer logger.Sync()

	fileCfg, err := config.Load(cfg.ConfigFile)
	if err != nil {
		logger.Fatal("error reading config file",
			zap.String("path", cfg.ConfigFile),
			zap.Error(err),
		)
	}
	cfg.LocationDetails = fileCfg.LocationDetails

	if cfg.UseCache {
		SetupCache(
			cfg.CacheLocation,
			cfg.CachePollingInterval,
			cfg.CacheMaxBytes,
		)
	}

	wdqapi := api.NewAPI(&cfg, logger)
	e := SetupServer(wdqapi)

	address := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	go func() {
		if err := e.Start(address); err != nil {
			e.Logger.Info("Shutting down the server")
		}
	}()

	// Wait for an interrupt and give in-flight requests ten seconds
	// to drain. Buffered channel as recommended for signal.Notify.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func ParseCLI() config.Config {
	cfg := config.Config{}
	pflag.StringVarP(&cfg.Host, "host", "i", "0.0.0.0", "Host where the server will run")
	pflag.IntVarP(&cfg.Port, "port", "p", 5080, "Port where the server will run")
	pflag.BoolVarP(&cfg.Debug, "debug", "d", false, "Whether or not to enable debug logging")
	pflag.StringVarP(&cfg.ConfigFile, "config", "c", "./wdqConfig.json", "Location of the service config file")
	pflag.BoolVarP(&cfg.UseCache, "use-cache", "u", true, "Use the output cache. Can be disabled for certain cases like testing.")
	pflag.StringVarP(&cfg.CacheLocation, "cache-location", "C", "./wdqcache/", "Where the cache will be stored")
	pflag.IntVarP(&cfg.CachePollingInterval, "cache-polling-interval", "P", 60, "How often to check the cache (in seconds)")
	pflag.Int64VarP(&cfg.CacheMaxBytes, "cache-max-bytes", "m", 100000000, "How large to allow the cache to be")
	pflag.Parse()

	return cfg
}

func SetupServer(a *api.API) *echo.Echo {
	e := echo.New()

	e.Debug = a.Cfg.Debug

	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// File-specific routes
	e.GET("/wdq/fs", a.GetFileLocations)
	e.GET("/wdq/fs/:location/*", a.GetFileOrDirectory)
	e.GET("/wdq/hdr/:location/*", a.GetHeader)

	// Data-service routes
	e.GET("/wdq/data/:channel/:outsize/:location/*", a.GetChannelData)

	// Add Prometheus as middleware for metrics gathering
	p := prometheus.NewPrometheus("windaq_data_service", nil)
	p.Use(e)

	return e
}

// SetupCache creates the cache directories and kicks off the cache
// checking goroutines.
func SetupCache(cacheLocation string, cachePollingInterval int, cacheMaxBytes int64) {
	outputFilesDir := filepath.Join(cacheLocation, "outputFiles")
	minioCacheDir := filepath.Join(cacheLocation, "miniocache")
	for _, dir := range []string{cacheLocation, outputFilesDir, minioCacheDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Println("error creating cache directory:", dir, err)
			return
		}
	}

	go cache.CheckCache(outputFilesDir, cachePollingInterval, cacheMaxBytes)
	go cache.CheckCache(minioCacheDir, cachePollingInterval, cacheMaxBytes)
}
