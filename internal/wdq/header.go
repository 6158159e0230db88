package wdq

import "time"

// Fixed header element offsets, following the element numbering in
// Dataq's file format reference.
const (
	offChannelCount     = 0   // element 1 low byte: acquired channel count
	offChannelCountMode = 1   // element 1 high byte: nonzero selects the 144-channel layout
	offChannelTable     = 4   // element 3: BOF offset of the channel descriptor table
	offChannelEntrySize = 5   // element 4: bytes per channel descriptor entry
	offHeaderSize       = 6   // element 5: total header bytes; sample data starts here
	offDataSize         = 8   // element 6: ADC sample data bytes
	offTrailerSize      = 12  // element 7: event marker and timestamp trailer bytes
	offAnnotationSize   = 16  // element 8: user annotation bytes, one NUL per channel
	offTimeStep         = 28  // element 13: seconds between samples of one channel
	offTimeOpened       = 36  // element 14: unix time acquisition opened the file
	offTimeWritten      = 40  // element 15: unix time acquisition wrote the file
	offFlags            = 100 // element 27: format flag word

	flagHiRes  = 1 << 0  // 16-bit data scaled by 0.25
	flagPacked = 1 << 14 // per-channel sample rate divisors in use

	// Legacy (≤29 channel) files keep only the low five bits of the
	// channel count byte; the rest carry unrelated flags.
	legacyChannelMask = 0x1F

	// fixedHeaderBytes is the header prefix every WinDaq file must
	// cover, through the element 27 flag word.
	fixedHeaderBytes = 102

	bytesPerSample = 2
)

// FileHeader carries the recording metadata from the fixed header
// region of a WinDaq file.
type FileHeader struct {
	ChannelCount       int
	SampleCount        int     // samples per channel declared by the header
	TimeStep           float64 // seconds between consecutive samples of one channel
	ChannelTableOffset int
	ChannelEntrySize   int
	HeaderSize         int // sample data begins at this BOF offset
	DataSize           int // ADC data bytes
	TrailerSize        int
	AnnotationSize     int
	HiRes              bool
	Packed             bool
	Opened             time.Time // when acquisition opened the file
	Written            time.Time // when acquisition last wrote it
}

// SampleRate returns the per-channel sample rate in Hz.
func (h *FileHeader) SampleRate() float64 {
	if h.TimeStep == 0 {
		return 0
	}
	return 1 / h.TimeStep
}

// parseHeader decodes the fixed header region. WinDaq files carry no
// magic token, so format identification is structural: the file must
// cover the fixed region and the channel table fields must be nonzero
// before any derived offset is trusted.
func parseHeader(r *byteReader) (*FileHeader, error) {
	if r.size() < fixedHeaderBytes {
		return nil, parseErrorf(StageHeader, 0, ErrInvalidFormat,
			"file is %d bytes, fixed header needs %d", r.size(), fixedHeaderBytes)
	}

	// All reads below stay inside the checked fixed region.
	countByte, _ := r.uint8At(offChannelCount)
	countMode, _ := r.uint8At(offChannelCountMode)
	channelCount := int(countByte)
	if countMode == 0 {
		channelCount = int(countByte & legacyChannelMask)
	}
	tableOffset, _ := r.uint8At(offChannelTable)
	entrySize, _ := r.uint8At(offChannelEntrySize)
	if channelCount == 0 || tableOffset == 0 || entrySize == 0 {
		return nil, parseErrorf(StageHeader, offChannelCount, ErrInvalidFormat,
			"channel count %d, table offset %d, entry size %d", channelCount, tableOffset, entrySize)
	}

	headerSize, _ := r.int16At(offHeaderSize)
	dataSize, _ := r.uint32At(offDataSize)
	trailerSize, _ := r.uint32At(offTrailerSize)
	annotationSize, _ := r.uint16At(offAnnotationSize)
	timeStep, _ := r.float64At(offTimeStep)
	opened, _ := r.int32At(offTimeOpened)
	written, _ := r.int32At(offTimeWritten)
	flags, _ := r.uint16At(offFlags)

	hdr := &FileHeader{
		ChannelCount:       channelCount,
		TimeStep:           timeStep,
		ChannelTableOffset: int(tableOffset),
		ChannelEntrySize:   int(entrySize),
		HeaderSize:         int(headerSize),
		DataSize:           int(dataSize),
		TrailerSize:        int(trailerSize),
		AnnotationSize:     int(annotationSize),
		HiRes:              flags&flagHiRes != 0,
		Packed:             flags&flagPacked != 0,
		Opened:             time.Unix(int64(opened), 0),
		Written:            time.Unix(int64(written), 0),
	}
	hdr.SampleCount = hdr.DataSize / (bytesPerSample * channelCount)

	if hdr.HeaderSize < fixedHeaderBytes {
		return nil, parseErrorf(StageHeader, offHeaderSize, ErrCorruptHeader,
			"declared header size %d smaller than the fixed region", hdr.HeaderSize)
	}
	if int64(hdr.HeaderSize) > r.size() {
		return nil, parseErrorf(StageHeader, offHeaderSize, ErrCorruptHeader,
			"declared header size %d exceeds file size %d", hdr.HeaderSize, r.size())
	}
	if hdr.ChannelTableOffset >= hdr.HeaderSize {
		return nil, parseErrorf(StageHeader, offChannelTable, ErrCorruptHeader,
			"channel table offset %d outside the %d-byte header", hdr.ChannelTableOffset, hdr.HeaderSize)
	}
	if hdr.TimeStep <= 0 {
		return nil, parseErrorf(StageHeader, offTimeStep, ErrCorruptHeader,
			"non-positive time step %g", hdr.TimeStep)
	}

	return hdr, nil
}
