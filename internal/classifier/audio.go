// Audio loading for the classifier: WAV decode, mono downmix, and linear
// resampling to the model's fixed input rate.
package classifier

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// errEmptyAudio is returned for clips that decode to zero samples.
var errEmptyAudio = errors.New("classifier: empty audio")

// loadWaveform decodes a PCM WAV file into mono float64 samples normalized
// to [-1, 1] at targetRate. Stereo input is downmixed by channel averaging;
// other channel counts are rejected.
func loadWaveform(path string, targetRate int) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("classifier: decode wav: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, errEmptyAudio
	}

	channels := buf.Format.NumChannels
	srcRate := buf.Format.SampleRate
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("classifier: unsupported channel count %d", channels)
	}
	if srcRate <= 0 {
		return nil, errors.New("classifier: invalid sample rate")
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := 1.0 / float64(int(1)<<(bitDepth-1))

	frames := len(buf.Data) / channels
	mono := make([]float64, frames)
	if channels == 1 {
		for i := 0; i < frames; i++ {
			mono[i] = float64(buf.Data[i]) * scale
		}
	} else {
		for i := 0; i < frames; i++ {
			l := float64(buf.Data[2*i]) * scale
			r := float64(buf.Data[2*i+1]) * scale
			mono[i] = (l + r) * 0.5
		}
	}

	if srcRate == targetRate {
		return mono, nil
	}
	return resample(mono, srcRate, targetRate), nil
}

// resample converts samples from srcRate to dstRate by linear interpolation.
// Good enough for a classification front-end; the model is robust to the
// interpolation artifacts.
func resample(in []float64, srcRate, dstRate int) []float64 {
	if len(in) == 0 {
		return nil
	}
	ratio := float64(srcRate) / float64(dstRate)
	n := int(float64(len(in)) / ratio)
	if n == 0 {
		n = 1
	}
	out := make([]float64, n)
	for i := range out {
		pos := float64(i) * ratio
		j := int(pos)
		if j >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := pos - float64(j)
		out[i] = in[j]*(1-frac) + in[j+1]*frac
	}
	return out
}

// frame slices the waveform into fixed windows with the given hop, both in
// samples. A clip shorter than one window yields a single zero-padded frame.
func frame(samples []float64, window, hop int) [][]float64 {
	if len(samples) == 0 {
		return nil
	}
	if len(samples) < window {
		padded := make([]float64, window)
		copy(padded, samples)
		return [][]float64{padded}
	}
	var frames [][]float64
	for start := 0; start+window <= len(samples); start += hop {
		frames = append(frames, samples[start:start+window])
	}
	return frames
}
