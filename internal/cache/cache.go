package cache

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Cache is a directory-backed store for fetched recordings and
// processed output blobs.
type Cache struct {
	Location string
}

// UrlToCacheFileName flattens a request URL and query string into the
// cache file name for that request.
func UrlToCacheFileName(url string) string {
	response := strings.Replace(url, "?", "_", 1)
	replacer := strings.NewReplacer("&", "", "=", "", ".", "", "/", "")
	return replacer.Replace(response)
}

// GetDataFromCache retrieves the contents of `cacheFileName` within a
// `subDir` directory.
func (c *Cache) GetDataFromCache(cacheFileName string, subDir string) ([]byte, error) {
	return os.ReadFile(filepath.Join(c.Location, subDir, cacheFileName))
}

// GetItemFromCache opens `cacheFileName` within a `subDir` directory.
func (c *Cache) GetItemFromCache(cacheFileName string, subDir string) (*os.File, error) {
	return os.Open(filepath.Join(c.Location, subDir, cacheFileName))
}

// PutItemInCache places `data` into the file denoted by
// `cacheFileName` within `subDir`.
func (c *Cache) PutItemInCache(cacheFileName string, subDir string, data []byte) error {
	fullPath := filepath.Join(c.Location, subDir, cacheFileName)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(fullPath, data, 0644)
}

// CheckCache runs a check every `checkInterval` seconds and purges the
// oldest entry while the cache size exceeds `maxBytes`.
func CheckCache(cachePath string, checkInterval int, maxBytes int64) {
	nextRun := time.Now()
	for {
		if nextRun.After(time.Now()) {
			time.Sleep(5 * time.Second)
			continue
		}

		entries, err := os.ReadDir(cachePath)
		if err != nil {
			log.Println("CheckCache error:", err)
			time.Sleep(5 * time.Second)
			continue
		}

		var currentBytes int64
		var oldest os.FileInfo
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			currentBytes += info.Size()
			if oldest == nil || info.ModTime().Before(oldest.ModTime()) {
				oldest = info
			}
		}

		if currentBytes > maxBytes && oldest != nil {
			// Only entries written by this service carry the wdq
			// cache key prefix; leave anything else alone.
			if strings.HasPrefix(oldest.Name(), "wdq") {
				log.Println("cache over maximum, removing old file", oldest.Name())
				if err := os.Remove(filepath.Join(cachePath, oldest.Name())); err != nil {
					log.Println("error removing cache file:", err)
				}
			} else {
				log.Println("skipping non-service file in the cache directory:", oldest.Name())
				nextRun = nextRun.Add(time.Second * time.Duration(checkInterval))
			}
		} else {
			nextRun = nextRun.Add(time.Second * time.Duration(checkInterval))
		}
	}
}
