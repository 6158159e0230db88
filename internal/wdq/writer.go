package wdq

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strings"
	"time"
)

// Writer-side layout constants. Written files use the standard
// 36-byte channel entry with the table directly after the fixed
// header region, which is where WinDaq itself places it.
const (
	writerChannelTableOffset = 110
	writerChannelEntryBytes  = 36
	maxChannels              = 144
	legacyMaxChannels        = 29

	// Normal (non-HiRes) samples carry a 14-bit signed value.
	rawMin = -8192
	rawMax = 8191
)

// File describes a recording to encode.
type File struct {
	TimeStep float64 // seconds between samples of one channel, required
	HiRes    bool
	Opened   time.Time
	Written  time.Time
	Channels []ChannelDescriptor
	// Samples holds channel-major physical values; every channel
	// must have the same length. Values are converted back to raw
	// words with the channel's calibration and clamped to the
	// encodable range.
	Samples [][]float64
}

// Encode produces a complete WDQ file image for f.
func Encode(f *File) ([]byte, error) {
	n := len(f.Channels)
	if n == 0 || n > maxChannels {
		return nil, fmt.Errorf("wdq: cannot encode %d channels", n)
	}
	if len(f.Samples) != n {
		return nil, fmt.Errorf("wdq: %d channels but %d sample columns", n, len(f.Samples))
	}
	if f.TimeStep <= 0 {
		return nil, fmt.Errorf("wdq: non-positive time step %g", f.TimeStep)
	}
	rows := len(f.Samples[0])
	for c, col := range f.Samples {
		if len(col) != rows {
			return nil, fmt.Errorf("wdq: channel %d has %d samples, channel 0 has %d", c, len(col), rows)
		}
	}
	for c, ch := range f.Channels {
		if ch.CalSlope == 0 {
			return nil, fmt.Errorf("wdq: channel %d has zero calibration slope", c)
		}
	}

	headerSize := writerChannelTableOffset + n*writerChannelEntryBytes
	dataSize := rows * bytesPerSample * n

	annotations := make([]string, n)
	for i, ch := range f.Channels {
		annotations[i] = ch.Annotation
	}
	annotationBlock := strings.Join(annotations, "\x00") + "\x00"

	buf := make([]byte, headerSize+dataSize+len(annotationBlock))
	le := binary.LittleEndian

	buf[offChannelCount] = byte(n)
	if n > legacyMaxChannels {
		buf[offChannelCountMode] = 1
	}
	buf[offChannelTable] = writerChannelTableOffset
	buf[offChannelEntrySize] = writerChannelEntryBytes
	le.PutUint16(buf[offHeaderSize:], uint16(headerSize))
	le.PutUint32(buf[offDataSize:], uint32(dataSize))
	le.PutUint32(buf[offTrailerSize:], 0)
	le.PutUint16(buf[offAnnotationSize:], uint16(len(annotationBlock)))
	le.PutUint64(buf[offTimeStep:], math.Float64bits(f.TimeStep))
	if !f.Opened.IsZero() {
		le.PutUint32(buf[offTimeOpened:], uint32(f.Opened.Unix()))
	}
	if !f.Written.IsZero() {
		le.PutUint32(buf[offTimeWritten:], uint32(f.Written.Unix()))
	}
	if f.HiRes {
		le.PutUint16(buf[offFlags:], flagHiRes)
	}

	for i, ch := range f.Channels {
		entry := buf[writerChannelTableOffset+i*writerChannelEntryBytes:]
		le.PutUint32(entry[chOffScaleSlope:], math.Float32bits(float32(ch.ScaleSlope)))
		le.PutUint32(entry[chOffScaleIntercept:], math.Float32bits(float32(ch.ScaleIntercept)))
		le.PutUint64(entry[chOffCalSlope:], math.Float64bits(ch.CalSlope))
		le.PutUint64(entry[chOffCalIntercept:], math.Float64bits(ch.CalIntercept))
		unit := ch.Unit
		if len(unit) > chUnitBytes {
			unit = unit[:chUnitBytes]
		}
		copy(entry[chOffUnit:chOffUnit+chUnitBytes], unit)
		if ch.SampleRateDivisor > 0 && ch.SampleRateDivisor < 256 {
			entry[chOffRateDivisor] = byte(ch.SampleRateDivisor)
		} else {
			entry[chOffRateDivisor] = 1
		}
		entry[chOffPhysicalChan] = byte(ch.PhysicalChannel)
	}

	data := buf[headerSize:]
	for i := 0; i < rows; i++ {
		for c := 0; c < n; c++ {
			raw := (f.Samples[c][i] - f.Channels[c].CalIntercept) / f.Channels[c].CalSlope
			le.PutUint16(data[bytesPerSample*(i*n+c):], uint16(encodeWord(raw, f.HiRes)))
		}
	}

	copy(buf[headerSize+dataSize:], annotationBlock)
	return buf, nil
}

// WriteFile encodes f and writes it to path.
func WriteFile(path string, f *File) error {
	data, err := Encode(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// encodeWord converts a raw value to the stored int16 word, inverting
// the adjustment decodeSamples applies.
func encodeWord(raw float64, hiRes bool) int16 {
	if hiRes {
		word := math.Round(raw * 4)
		return int16(clamp(word, math.MinInt16, math.MaxInt16))
	}
	v := clamp(math.Round(raw), rawMin, rawMax)
	return int16(v) << 2
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
