package api

import (
	"strings"

	"go.uber.org/zap"

	"github.com/dataq-tools/windaq-data-service/internal/cache"
	"github.com/dataq-tools/windaq-data-service/internal/config"
)

type API struct {
	Cfg    *config.Config
	Cache  *cache.Cache
	Logger *zap.Logger
}

func NewAPI(cfg *config.Config, logger *zap.Logger) *API {
	return &API{
		Cfg:    cfg,
		Cache:  &cache.Cache{Location: cfg.CacheLocation},
		Logger: logger,
	}
}

// isWDQ reports whether a path names a WinDaq recording.
func isWDQ(filePath string) bool {
	return strings.HasSuffix(strings.ToLower(filePath), ".wdq")
}
