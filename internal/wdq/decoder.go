// Package wdq decodes WDQ binary data acquisition files produced by
// WinDaq recorders. A file is read in a single pass: fixed header,
// channel descriptor table, interleaved sample data, then the user
// annotations that follow the event marker trailer. The result is an
// immutable Dataset of calibrated, physical-unit samples.
package wdq

import (
	"io"
	"os"
	"strings"
)

// Options control decode policy.
type Options struct {
	// BestEffort returns the whole sample rows actually present in a
	// truncated file instead of failing with ErrTruncatedData.
	// Annotations past the end of a damaged file are dropped the
	// same way. The default is strict: any shortfall aborts the
	// decode and no Dataset is returned.
	BestEffort bool
}

// Decode parses a complete WDQ file image.
func Decode(data []byte) (*Dataset, error) {
	return DecodeWithOptions(data, Options{})
}

// DecodeWithOptions parses a complete WDQ file image under the given
// policy.
func DecodeWithOptions(data []byte, opts Options) (*Dataset, error) {
	r := newByteReader(data)

	hdr, err := parseHeader(r)
	if err != nil {
		return nil, err
	}
	channels, err := parseChannelTable(r, hdr)
	if err != nil {
		return nil, err
	}
	samples, rows, err := decodeSamples(r, hdr, channels, opts)
	if err != nil {
		return nil, err
	}
	if err := parseAnnotations(r, hdr, channels, opts); err != nil {
		return nil, err
	}

	return &Dataset{
		header:      hdr,
		channels:    channels,
		samples:     samples,
		sampleCount: rows,
	}, nil
}

// DecodeReader reads the remainder of rd into memory and decodes it.
func DecodeReader(rd io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// DecodeFile reads and decodes the WDQ file at path. The file handle
// is released before returning, on success and failure alike.
func DecodeFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeReader(f)
}

// decodeSamples walks the interleaved sample region. Each time step
// stores one little-endian int16 word per channel, CH1 first. Normal
// files keep a 14-bit value in the upper bits of the word; HiRes
// files store 16-bit data scaled by 0.25.
func decodeSamples(r *byteReader, hdr *FileHeader, channels []ChannelDescriptor, opts Options) ([][]float64, int, error) {
	rows := hdr.SampleCount
	dataEnd := int64(hdr.HeaderSize) + int64(hdr.DataSize)
	if dataEnd > r.size() {
		if !opts.BestEffort {
			return nil, 0, parseErrorf(StageSampleData, r.size(), ErrTruncatedData,
				"header declares %d data bytes, file ends %d bytes short",
				hdr.DataSize, dataEnd-r.size())
		}
		avail := r.size() - int64(hdr.HeaderSize)
		if avail < 0 {
			avail = 0
		}
		rows = int(avail) / (bytesPerSample * hdr.ChannelCount)
	}

	samples := make([][]float64, hdr.ChannelCount)
	for c := range samples {
		samples[c] = make([]float64, rows)
	}

	r.seek(int64(hdr.HeaderSize))
	for i := 0; i < rows; i++ {
		for c := range channels {
			word, err := r.readInt16()
			if err != nil {
				return nil, 0, parseError(StageSampleData, r.pos, err)
			}
			var raw float64
			if hdr.HiRes {
				raw = float64(word) * 0.25
			} else {
				raw = float64(word >> 2)
			}
			samples[c][i] = channels[c].CalSlope*raw + channels[c].CalIntercept
		}
	}
	return samples, rows, nil
}

// parseAnnotations reads the NUL-separated user annotation block that
// follows the trailer and assigns channel i the i-th string. The
// event markers inside the trailer itself are not interpreted; only
// the trailer size participates in the offset arithmetic.
func parseAnnotations(r *byteReader, hdr *FileHeader, channels []ChannelDescriptor, opts Options) error {
	if hdr.AnnotationSize == 0 {
		return nil
	}
	off := int64(hdr.HeaderSize) + int64(hdr.DataSize) + int64(hdr.TrailerSize)
	raw, err := r.slice(off, int64(hdr.AnnotationSize))
	if err != nil {
		if opts.BestEffort {
			return nil
		}
		return parseErrorf(StageTrailer, off, ErrCorruptHeader,
			"annotation region of %d bytes overruns the file", hdr.AnnotationSize)
	}
	parts := strings.Split(string(raw), "\x00")
	for i := range channels {
		if i < len(parts) {
			channels[i].Annotation = strings.TrimSpace(parts[i])
		}
	}
	return nil
}
