package datasource

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/dataq-tools/windaq-data-service/internal/cache"
	"github.com/dataq-tools/windaq-data-service/internal/config"
)

// Open resolves a configured location and returns a reader over the
// named recording. MinIO objects go through a write-through local
// file cache. When the returned reader implements io.Closer the
// caller owns closing it.
func Open(cfg *config.Config, store *cache.Cache, logger *zap.Logger, locationName, fileName string) (io.ReadSeeker, error) {
	var loc config.Location
	for i := range cfg.LocationDetails {
		if cfg.LocationDetails[i].LocationName == locationName {
			loc = cfg.LocationDetails[i]
		}
	}
	if loc.LocationName != locationName {
		return nil, fmt.Errorf("unknown location %q", locationName)
	}

	switch loc.LocationType {
	case "localFile":
		fullPath := filepath.Join(loc.Path, fileName)
		logger.Info("reading local file",
			zap.String("location_name", locationName),
			zap.String("path", fullPath),
		)
		file, err := os.Open(fullPath)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", fullPath, err)
		}
		return file, nil

	case "minio":
		start := time.Now()
		objectPath := filepath.Join(loc.Path, fileName)
		cacheFileName := cache.UrlToCacheFileName(fmt.Sprintf("wdq_%s%s", loc.MinioBucket, objectPath))
		if file, err := store.GetItemFromCache(cacheFileName, "miniocache/"); err == nil {
			return file, nil
		}

		logger.Info("minio object not in local cache, fetching",
			zap.String("bucket", loc.MinioBucket),
			zap.String("object", objectPath),
		)
		client, err := minio.New(loc.Location, &minio.Options{
			Creds:  credentials.NewStaticV4(loc.MinioAccessKey, loc.MinioSecretKey, ""),
			Secure: false,
		})
		if err != nil {
			return nil, fmt.Errorf("connecting to minio at %s: %w", loc.Location, err)
		}

		object, err := client.GetObject(context.Background(), loc.MinioBucket, objectPath, minio.GetObjectOptions{})
		if err != nil {
			return nil, fmt.Errorf("fetching %s from minio: %w", objectPath, err)
		}
		defer object.Close()

		stat, err := object.Stat()
		if err != nil {
			return nil, fmt.Errorf("fetching %s from minio: %w", objectPath, err)
		}
		data := make([]byte, stat.Size)
		if _, err := io.ReadFull(object, data); err != nil {
			return nil, fmt.Errorf("reading %s from minio: %w", objectPath, err)
		}
		logger.Info("fetched minio object",
			zap.String("object", objectPath),
			zap.Int64("bytes", stat.Size),
			zap.Duration("elapsed", time.Since(start)),
		)

		if cfg.UseCache {
			if err := store.PutItemInCache(cacheFileName, "miniocache/", data); err != nil {
				logger.Warn("writing minio cache file", zap.Error(err))
			}
		}
		return bytes.NewReader(data), nil

	default:
		return nil, fmt.Errorf("unsupported location type %q in %q", loc.LocationType, loc.LocationName)
	}
}
