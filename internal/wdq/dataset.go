package wdq

// Dataset is a fully decoded WinDaq recording: header metadata, the
// ordered channel descriptors and a channel-major matrix of
// calibrated samples. It is built once by Decode and read-only
// afterwards; decoding different files concurrently needs no
// synchronization.
type Dataset struct {
	header      *FileHeader
	channels    []ChannelDescriptor
	samples     [][]float64
	sampleCount int
}

// Header returns a copy of the recording metadata.
func (d *Dataset) Header() FileHeader { return *d.header }

// ChannelCount returns the number of acquired channels.
func (d *Dataset) ChannelCount() int { return len(d.channels) }

// SampleCount reports the samples per channel actually decoded. It
// only differs from the header's declared count after a best-effort
// decode of a truncated file.
func (d *Dataset) SampleCount() int { return d.sampleCount }

// Channel returns the descriptor for the zero-based channel index.
func (d *Dataset) Channel(ch int) ChannelDescriptor { return d.channels[ch] }

// Channels returns the ordered channel descriptors.
func (d *Dataset) Channels() []ChannelDescriptor {
	return append([]ChannelDescriptor(nil), d.channels...)
}

// Data returns channel ch's calibrated samples. The slice is owned by
// the Dataset and must not be modified.
func (d *Dataset) Data(ch int) []float64 { return d.samples[ch] }

// Value returns the calibrated value of channel ch at sample index i.
func (d *Dataset) Value(ch, i int) float64 { return d.samples[ch][i] }

// TimeAt returns the time axis value for sample index i, in seconds
// from the start of the recording.
func (d *Dataset) TimeAt(i int) float64 { return float64(i) * d.header.TimeStep }

// Times materializes the full time axis.
func (d *Dataset) Times() []float64 {
	t := make([]float64, d.sampleCount)
	for i := range t {
		t[i] = float64(i) * d.header.TimeStep
	}
	return t
}

// Unit returns channel ch's engineering unit tag.
func (d *Dataset) Unit(ch int) string { return d.channels[ch].Unit }

// Annotation returns channel ch's user annotation.
func (d *Dataset) Annotation(ch int) string { return d.channels[ch].Annotation }
