package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns the magnitude of the real FFT coefficients of data,
// n/2+1 values for n samples. The mean is removed first so bin 0 carries no
// offset.
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n < 2 {
		return nil
	}

	centered := make([]float64, n)
	copy(centered, data)
	floats.AddConst(-stat.Mean(centered, nil), centered)

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, centered)

	ps := make([]float64, len(coeffs))
	for i, c := range coeffs {
		ps[i] = cmplx.Abs(c)
	}
	return ps
}

// DominantFrequency returns the frequency, in cycles per unit time, of the
// strongest non-zero bin of data sampled every sampleDt.
func DominantFrequency(data []float64, sampleDt float64) float64 {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || sampleDt <= 0 {
		return 0
	}

	k := 1 + floats.MaxIdx(ps[1:])
	fft := fourier.NewFFT(len(data))
	return fft.Freq(k) / sampleDt
}
