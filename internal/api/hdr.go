package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dataq-tools/windaq-data-service/internal/datasource"
	"github.com/dataq-tools/windaq-data-service/internal/wdq"
)

// HeaderResponse is the JSON shape GetHeader returns for a decoded
// recording.
type HeaderResponse struct {
	ChannelCount int           `json:"channel_count"`
	SampleCount  int           `json:"sample_count"`
	SampleRate   float64       `json:"sample_rate"`
	TimeStep     float64       `json:"time_step"`
	HiRes        bool          `json:"hires"`
	Packed       bool          `json:"packed"`
	Opened       time.Time     `json:"opened"`
	Written      time.Time     `json:"written"`
	Channels     []ChannelInfo `json:"channels"`
}

// ChannelInfo is the per-channel slice of HeaderResponse.
type ChannelInfo struct {
	Unit            string  `json:"unit"`
	CalSlope        float64 `json:"cal_slope"`
	CalIntercept    float64 `json:"cal_intercept"`
	PhysicalChannel int     `json:"physical_channel"`
	Annotation      string  `json:"annotation,omitempty"`
}

func (a *API) GetHeader(c echo.Context) error {
	filePath := c.Param("*")
	locationName := c.Param("location")
	if !isWDQ(filePath) {
		return c.String(http.StatusBadRequest, "can only return headers for WinDaq recordings (.wdq)")
	}

	reader, err := datasource.Open(a.Cfg, a.Cache, a.Logger, locationName, filePath)
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}
	if closer, ok := reader.(io.Closer); ok {
		defer closer.Close()
	}

	c.Logger().Infof("decoding %s for file header mode", filePath)
	ds, err := wdq.DecodeReader(reader)
	if err != nil {
		var pe *wdq.ParseError
		if errors.As(err, &pe) {
			return c.String(http.StatusBadRequest, err.Error())
		}
		return err
	}

	hdr := ds.Header()
	resp := HeaderResponse{
		ChannelCount: hdr.ChannelCount,
		SampleCount:  hdr.SampleCount,
		SampleRate:   hdr.SampleRate(),
		TimeStep:     hdr.TimeStep,
		HiRes:        hdr.HiRes,
		Packed:       hdr.Packed,
		Opened:       hdr.Opened,
		Written:      hdr.Written,
		Channels:     make([]ChannelInfo, hdr.ChannelCount),
	}
	for i, ch := range ds.Channels() {
		resp.Channels[i] = ChannelInfo{
			Unit:            ch.Unit,
			CalSlope:        ch.CalSlope,
			CalIntercept:    ch.CalIntercept,
			PhysicalChannel: ch.PhysicalChannel,
			Annotation:      ch.Annotation,
		}
	}
	return c.JSON(http.StatusOK, resp)
}
