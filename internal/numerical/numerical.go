package numerical

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

func SuppressNaN(num float64) float64 {
	if math.IsNaN(num) {
		return 0
	}
	return num
}

// Transform reduces a window of samples to one output value.
func Transform(dataIn []float64, transform string) float64 {
	switch transform {
	case "mean":
		return SuppressNaN(stat.Mean(dataIn, nil))
	case "max":
		return SuppressNaN(floats.Max(dataIn))
	case "min":
		return SuppressNaN(floats.Min(dataIn))
	case "first":
		return SuppressNaN(dataIn[0])
	default:
		return 0
	}
}

// DownSampleLine resamples a channel series to outsize points. When
// the series is longer than outsize each output point is the
// transform of its input window; shorter series are expanded by
// repeating input values.
func DownSampleLine(datain []float64, outsize int, transform string) []float64 {
	outData := make([]float64, outsize)
	if len(datain) == 0 {
		return outData
	}

	elementsPerOutput := float64(len(datain)) / float64(outsize)
	if elementsPerOutput > 1 {
		elementsPerOutputCeil := int(math.Ceil(elementsPerOutput))
		for x := 0; x < outsize; x++ {
			var startElement int
			var endElement int
			if x != outsize-1 {
				startElement = int(math.Round(float64(x) * elementsPerOutput))
				endElement = startElement + elementsPerOutputCeil
				if endElement > len(datain) {
					endElement = len(datain)
				}
			} else {
				endElement = len(datain)
				startElement = endElement - elementsPerOutputCeil
			}
			outData[x] = Transform(datain[startElement:endElement], transform)
		}
	} else {
		for x := 0; x < outsize; x++ {
			index := int(math.Floor(float64(x) * elementsPerOutput))
			outData[x] = datain[index]
		}
	}
	return outData
}
