package api

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gonum.org/v1/gonum/floats"

	"github.com/dataq-tools/windaq-data-service/internal/cache"
	"github.com/dataq-tools/windaq-data-service/internal/datasource"
	"github.com/dataq-tools/windaq-data-service/internal/numerical"
	"github.com/dataq-tools/windaq-data-service/internal/wdq"
)

// SeriesMetaData rides back to the client in response headers and is
// cached next to the output blob.
type SeriesMetaData struct {
	Outsize int     `json:"outsize"`
	Unit    string  `json:"unit"`
	Zmin    float64 `json:"zmin"`
	Zmax    float64 `json:"zmax"`
	Xstart  float64 `json:"xstart"`
	Xdelta  float64 `json:"xdelta"`
}

// GetChannelData returns one channel's calibrated series, resampled
// to outsize points, as a little-endian float64 blob.
//
// The URL is of the form:
// /wdq/data/:channel/:outsize/:location/path/to/recording.wdq
// with optional query params transform (first|min|max|mean) and
// x1/x2 selecting a sample index range.
func (a *API) GetChannelData(c echo.Context) error {
	channel, err := strconv.Atoi(c.Param("channel"))
	if err != nil || channel < 0 {
		return c.String(http.StatusBadRequest, fmt.Sprintf("channel must be a non-negative integer; given %s", c.Param("channel")))
	}
	outsize, err := strconv.Atoi(c.Param("outsize"))
	if err != nil || outsize < 1 {
		return c.String(http.StatusBadRequest, fmt.Sprintf("outsize must be a positive integer; given %s", c.Param("outsize")))
	}
	transform := c.QueryParam("transform")
	if transform == "" {
		transform = "first"
	}
	switch transform {
	case "first", "min", "max", "mean":
	default:
		return c.String(http.StatusBadRequest, fmt.Sprintf("transform must be one of {first, min, max, mean}; given %s", transform))
	}

	locationName := c.Param("location")
	filePath := c.Param("*")
	if !isWDQ(filePath) {
		return c.String(http.StatusBadRequest, "can only serve data from WinDaq recordings (.wdq)")
	}

	start := time.Now()
	cacheFileName := cache.UrlToCacheFileName(c.Request().URL.String())

	var data []byte
	var meta SeriesMetaData
	inCache := false

	// Check if the request has been previously processed and is in
	// the cache. If not, process it.
	if a.Cfg.UseCache {
		if cached, cacheErr := a.Cache.GetDataFromCache(cacheFileName, "outputFiles/"); cacheErr == nil {
			metaJSON, metaErr := a.Cache.GetDataFromCache(cacheFileName+"meta", "outputFiles/")
			if metaErr == nil && json.Unmarshal(metaJSON, &meta) == nil {
				data = cached
				inCache = true
			}
		}
	}

	if !inCache {
		c.Logger().Info("data request not in cache, computing result")
		reader, err := datasource.Open(a.Cfg, a.Cache, a.Logger, locationName, filePath)
		if err != nil {
			return c.String(http.StatusBadRequest, err.Error())
		}
		if closer, ok := reader.(io.Closer); ok {
			defer closer.Close()
		}

		ds, err := wdq.DecodeReader(reader)
		if err != nil {
			var pe *wdq.ParseError
			if errors.As(err, &pe) {
				return c.String(http.StatusBadRequest, err.Error())
			}
			return err
		}
		if channel >= ds.ChannelCount() {
			return c.String(http.StatusBadRequest, fmt.Sprintf("recording has %d channels; channel %d requested", ds.ChannelCount(), channel))
		}

		series := ds.Data(channel)
		x1, x2 := 0, len(series)
		if v := c.QueryParam("x1"); v != "" {
			x1, err = strconv.Atoi(v)
			if err != nil || x1 < 0 || x1 >= len(series) {
				return c.String(http.StatusBadRequest, fmt.Sprintf("x1 out of range 0 to %d", len(series)-1))
			}
		}
		if v := c.QueryParam("x2"); v != "" {
			x2, err = strconv.Atoi(v)
			if err != nil || x2 <= x1 || x2 > len(series) {
				return c.String(http.StatusBadRequest, fmt.Sprintf("x2 out of range %d to %d", x1+1, len(series)))
			}
		}
		series = series[x1:x2]

		thin := numerical.DownSampleLine(series, outsize, transform)
		buf := new(bytes.Buffer)
		if err := binary.Write(buf, binary.LittleEndian, thin); err != nil {
			return err
		}
		data = buf.Bytes()

		hdr := ds.Header()
		meta = SeriesMetaData{
			Outsize: outsize,
			Unit:    ds.Unit(channel),
			Xstart:  ds.TimeAt(x1),
			Xdelta:  hdr.TimeStep * float64(len(series)) / float64(outsize),
		}
		if len(thin) > 0 {
			meta.Zmin = floats.Min(thin)
			meta.Zmax = floats.Max(thin)
		}

		if a.Cfg.UseCache {
			metaJSON, marshalErr := json.Marshal(meta)
			if marshalErr != nil {
				return marshalErr
			}
			go a.Cache.PutItemInCache(cacheFileName, "outputFiles/", data)
			go a.Cache.PutItemInCache(cacheFileName+"meta", "outputFiles/", metaJSON)
		}
	} else {
		c.Logger().Info("request in cache - returning data from cache")
	}

	c.Logger().Infof("length of output data %d processed in %s", len(data), time.Since(start).String())

	c.Response().Header().Set(
		echo.HeaderAccessControlExposeHeaders,
		"outsize,unit,zmin,zmax,xstart,xdelta",
	)
	c.Response().Header().Set("outsize", strconv.Itoa(meta.Outsize))
	c.Response().Header().Set("unit", meta.Unit)
	c.Response().Header().Set("zmin", fmt.Sprintf("%g", meta.Zmin))
	c.Response().Header().Set("zmax", fmt.Sprintf("%g", meta.Zmax))
	c.Response().Header().Set("xstart", fmt.Sprintf("%g", meta.Xstart))
	c.Response().Header().Set("xdelta", fmt.Sprintf("%g", meta.Xdelta))
	return c.Blob(http.StatusOK, "application/octet-stream", data)
}
