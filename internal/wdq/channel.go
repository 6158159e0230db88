package wdq

// Channel descriptor entry field offsets, relative to the entry start.
const (
	chOffScaleSlope     = 0  // f32 display scaling slope
	chOffScaleIntercept = 4  // f32 display scaling intercept
	chOffCalSlope       = 8  // f64 calibration slope m
	chOffCalIntercept   = 16 // f64 calibration intercept b
	chOffUnit           = 24 // 6-byte engineering unit tag, NUL padded
	chUnitBytes         = 6
	chOffRateDivisor    = 31 // u8 sample rate divisor, packed files only
	chOffPhysicalChan   = 32 // u8 physical channel number

	// minChannelEntryBytes is the smallest entry layout the decoder
	// recognizes. The standard entry is 36 bytes; anything shorter
	// than the fields above is an unknown variant.
	minChannelEntryBytes = 33
)

// ChannelDescriptor describes one acquired channel's calibration.
// Descriptors are immutable once parsed, except for the annotation
// string which is filled in from the trailer region.
type ChannelDescriptor struct {
	ScaleSlope        float64 // display window scaling slope
	ScaleIntercept    float64 // display window scaling intercept
	CalSlope          float64 // calibration slope m in calibrated = m*raw + b
	CalIntercept      float64 // calibration intercept b
	Unit              string  // engineering unit tag
	SampleRateDivisor int     // 1 unless the file is packed
	PhysicalChannel   int
	Annotation        string // user annotation for the channel
}

// parseChannelTable decodes exactly hdr.ChannelCount descriptor
// entries starting at the channel table offset.
func parseChannelTable(r *byteReader, hdr *FileHeader) ([]ChannelDescriptor, error) {
	if hdr.ChannelEntrySize < minChannelEntryBytes {
		return nil, parseErrorf(StageChannelTable, int64(hdr.ChannelTableOffset), ErrCorruptChannelTable,
			"unrecognized %d-byte channel entry layout", hdr.ChannelEntrySize)
	}
	tableEnd := hdr.ChannelTableOffset + hdr.ChannelCount*hdr.ChannelEntrySize
	if tableEnd > hdr.HeaderSize {
		return nil, parseErrorf(StageChannelTable, int64(tableEnd), ErrCorruptChannelTable,
			"%d entries of %d bytes overrun the sample data offset %d",
			hdr.ChannelCount, hdr.ChannelEntrySize, hdr.HeaderSize)
	}

	channels := make([]ChannelDescriptor, hdr.ChannelCount)
	for i := range channels {
		base := int64(hdr.ChannelTableOffset + i*hdr.ChannelEntrySize)

		scaleSlope, err := r.float32At(base + chOffScaleSlope)
		if err != nil {
			return nil, parseError(StageChannelTable, base, err)
		}
		scaleIntercept, err := r.float32At(base + chOffScaleIntercept)
		if err != nil {
			return nil, parseError(StageChannelTable, base, err)
		}
		calSlope, err := r.float64At(base + chOffCalSlope)
		if err != nil {
			return nil, parseError(StageChannelTable, base, err)
		}
		calIntercept, err := r.float64At(base + chOffCalIntercept)
		if err != nil {
			return nil, parseError(StageChannelTable, base, err)
		}
		unit, err := r.stringAt(base+chOffUnit, chUnitBytes)
		if err != nil {
			return nil, parseError(StageChannelTable, base, err)
		}
		physical, err := r.uint8At(base + chOffPhysicalChan)
		if err != nil {
			return nil, parseError(StageChannelTable, base, err)
		}

		divisor := 1
		if hdr.Packed {
			d, err := r.uint8At(base + chOffRateDivisor)
			if err != nil {
				return nil, parseError(StageChannelTable, base, err)
			}
			if d > 0 {
				divisor = int(d)
			}
		}

		channels[i] = ChannelDescriptor{
			ScaleSlope:        float64(scaleSlope),
			ScaleIntercept:    float64(scaleIntercept),
			CalSlope:          calSlope,
			CalIntercept:      calIntercept,
			Unit:              unit,
			SampleRateDivisor: divisor,
			PhysicalChannel:   int(physical),
		}
	}
	return channels, nil
}
