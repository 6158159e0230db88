package wdq_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dataq-tools/windaq-data-service/internal/wdq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRaw holds the raw 14-bit values each channel stores in the
// synthetic recording, one row per time step.
var testRaw = [3][10]float64{
	{0, 1, -1, 100, -100, 7, 8191, -8192, 42, 13},
	{5, 10, 15, 20, 25, 30, 35, 40, 45, 50},
	{7, -7, 3, 12, 0, 1, 2, 3, 4, 5},
}

// testFile builds a 3-channel, 10-sample recording with calibration
// slopes {1, 2, 0.5} and intercepts {0, 0, 10}.
func testFile() *wdq.File {
	channels := []wdq.ChannelDescriptor{
		{CalSlope: 1, CalIntercept: 0, Unit: "V", PhysicalChannel: 1, Annotation: "supply voltage"},
		{CalSlope: 2, CalIntercept: 0, Unit: "mV", PhysicalChannel: 2, Annotation: "strain bridge"},
		{CalSlope: 0.5, CalIntercept: 10, Unit: "degC", PhysicalChannel: 3, Annotation: "probe temp"},
	}
	samples := make([][]float64, len(channels))
	for c := range channels {
		samples[c] = make([]float64, len(testRaw[c]))
		for i, raw := range testRaw[c] {
			samples[c][i] = channels[c].CalSlope*raw + channels[c].CalIntercept
		}
	}
	return &wdq.File{
		TimeStep: 0.01,
		Opened:   time.Unix(1568035200, 0),
		Written:  time.Unix(1568035260, 0),
		Channels: channels,
		Samples:  samples,
	}
}

func TestDecodeHeaderRoundTrip(t *testing.T) {
	f := testFile()
	data, err := wdq.Encode(f)
	require.NoError(t, err)

	ds, err := wdq.Decode(data)
	require.NoError(t, err)

	hdr := ds.Header()
	assert.Equal(t, 3, hdr.ChannelCount)
	assert.Equal(t, 10, hdr.SampleCount)
	assert.Equal(t, 0.01, hdr.TimeStep)
	assert.InDelta(t, 100.0, hdr.SampleRate(), 1e-9)
	assert.False(t, hdr.HiRes)
	assert.False(t, hdr.Packed)
	assert.Equal(t, f.Opened.Unix(), hdr.Opened.Unix())
	assert.Equal(t, f.Written.Unix(), hdr.Written.Unix())
}

func TestChannelDescriptors(t *testing.T) {
	data, err := wdq.Encode(testFile())
	require.NoError(t, err)

	ds, err := wdq.Decode(data)
	require.NoError(t, err)

	require.Len(t, ds.Channels(), ds.Header().ChannelCount)
	assert.Equal(t, "V", ds.Unit(0))
	assert.Equal(t, "mV", ds.Unit(1))
	assert.Equal(t, "degC", ds.Unit(2))
	assert.Equal(t, "supply voltage", ds.Annotation(0))
	assert.Equal(t, "strain bridge", ds.Annotation(1))
	assert.Equal(t, "probe temp", ds.Annotation(2))

	ch := ds.Channel(2)
	assert.Equal(t, 0.5, ch.CalSlope)
	assert.Equal(t, 10.0, ch.CalIntercept)
	assert.Equal(t, 3, ch.PhysicalChannel)
	assert.Equal(t, 1, ch.SampleRateDivisor)
}

func TestCalibration(t *testing.T) {
	data, err := wdq.Encode(testFile())
	require.NoError(t, err)

	ds, err := wdq.Decode(data)
	require.NoError(t, err)

	// Every row holds one value per channel.
	for c := 0; c < ds.ChannelCount(); c++ {
		require.Len(t, ds.Data(c), ds.SampleCount())
	}

	// Identity calibration: raw equals calibrated exactly.
	for i, raw := range testRaw[0] {
		assert.Equal(t, raw, ds.Value(0, i))
	}

	// Channel 2: calibrated = 0.5*raw + 10.
	assert.Equal(t, 0.5*7+10, ds.Value(2, 0))
	for i, raw := range testRaw[2] {
		assert.Equal(t, 0.5*raw+10, ds.Value(2, i))
	}
}

func TestHiResDecoding(t *testing.T) {
	f := testFile()
	f.HiRes = true
	// HiRes raw values have quarter-count resolution.
	f.Samples[0][0] = 2.5
	f.Samples[0][1] = -0.75

	data, err := wdq.Encode(f)
	require.NoError(t, err)

	ds, err := wdq.Decode(data)
	require.NoError(t, err)
	assert.True(t, ds.Header().HiRes)
	assert.Equal(t, 2.5, ds.Value(0, 0))
	assert.Equal(t, -0.75, ds.Value(0, 1))
}

func TestTimeAxis(t *testing.T) {
	data, err := wdq.Encode(testFile())
	require.NoError(t, err)

	ds, err := wdq.Decode(data)
	require.NoError(t, err)

	assert.Equal(t, 0.0, ds.TimeAt(0))
	assert.InDelta(t, 0.05, ds.TimeAt(5), 1e-12)

	times := ds.Times()
	require.Len(t, times, ds.SampleCount())
	assert.InDelta(t, 0.09, times[9], 1e-12)
}

func TestTruncatedData(t *testing.T) {
	data, err := wdq.Encode(testFile())
	require.NoError(t, err)
	full, err := wdq.Decode(data)
	require.NoError(t, err)

	// Cut the file mid sample data: 5 whole rows plus a torn word.
	headerSize := full.Header().HeaderSize
	short := data[:headerSize+5*3*2+3]

	_, err = wdq.Decode(short)
	require.Error(t, err)
	assert.ErrorIs(t, err, wdq.ErrTruncatedData)

	var pe *wdq.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, wdq.StageSampleData, pe.Stage)

	// Best-effort mode returns the whole rows actually present.
	ds, err := wdq.DecodeWithOptions(short, wdq.Options{BestEffort: true})
	require.NoError(t, err)
	assert.Equal(t, 5, ds.SampleCount())
	for c := 0; c < ds.ChannelCount(); c++ {
		assert.Len(t, ds.Data(c), 5)
	}
	// Annotations live past the data region and are gone with it.
	assert.Empty(t, ds.Annotation(0))
}

func TestInvalidFormat(t *testing.T) {
	_, err := wdq.Decode([]byte("WINDAQ"))
	require.Error(t, err)
	assert.ErrorIs(t, err, wdq.ErrInvalidFormat)

	data, err := wdq.Encode(testFile())
	require.NoError(t, err)

	// Zeroed channel table offset fails before any header field is
	// trusted.
	bad := append([]byte(nil), data...)
	bad[4] = 0
	_, err = wdq.Decode(bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, wdq.ErrInvalidFormat)

	var pe *wdq.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, wdq.StageHeader, pe.Stage)
}

func TestCorruptHeader(t *testing.T) {
	data, err := wdq.Encode(testFile())
	require.NoError(t, err)

	// Declared header size beyond the end of the file.
	bad := append([]byte(nil), data...)
	bad[6] = 0xFF
	bad[7] = 0x7F
	_, err = wdq.Decode(bad)
	assert.ErrorIs(t, err, wdq.ErrCorruptHeader)

	// Zero time step.
	bad = append([]byte(nil), data...)
	for i := 28; i < 36; i++ {
		bad[i] = 0
	}
	_, err = wdq.Decode(bad)
	assert.ErrorIs(t, err, wdq.ErrCorruptHeader)
}

func TestCorruptChannelTable(t *testing.T) {
	data, err := wdq.Encode(testFile())
	require.NoError(t, err)

	// Entry size below any recognized descriptor layout.
	bad := append([]byte(nil), data...)
	bad[5] = 16
	_, err = wdq.Decode(bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, wdq.ErrCorruptChannelTable)

	// Channel count bumped so the table overruns the data offset.
	bad = append([]byte(nil), data...)
	bad[0] = 9
	_, err = wdq.Decode(bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, wdq.ErrCorruptChannelTable)

	var pe *wdq.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, wdq.StageChannelTable, pe.Stage)
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recording.wdq")
	require.NoError(t, wdq.WriteFile(path, testFile()))

	ds, err := wdq.DecodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.ChannelCount())
	assert.Equal(t, 10, ds.SampleCount())

	_, err = wdq.DecodeFile(filepath.Join(t.TempDir(), "missing.wdq"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, wdq.ErrInvalidFormat))
}

func TestEncodeValidation(t *testing.T) {
	f := testFile()
	f.TimeStep = 0
	_, err := wdq.Encode(f)
	require.Error(t, err)

	f = testFile()
	f.Samples[1] = f.Samples[1][:4]
	_, err = wdq.Encode(f)
	require.Error(t, err)

	f = testFile()
	f.Channels[0].CalSlope = 0
	_, err = wdq.Encode(f)
	require.Error(t, err)

	_, err = wdq.Encode(&wdq.File{TimeStep: 1})
	require.Error(t, err)
}
