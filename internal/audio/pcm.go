// Package audio holds the small amount of signal plumbing the voice features
// need: PCM16 conversion, rate conversion for the capture path, and the
// gapless playback scheduler.
package audio

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// DecodePCM16 converts 16-bit little-endian mono PCM into float32 samples in
// [-1, 1). A trailing odd byte is dropped.
func DecodePCM16(data []byte) []float32 {
	n := len(data) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v := int16(binary.LittleEndian.Uint16(data[i*2:]))
		out[i] = float32(v) / 32768.0
	}
	return out
}

// EncodePCM16 converts float32 samples into 16-bit little-endian PCM,
// clamping out-of-range values.
func EncodePCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		v := int16(s * 32767)
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

// DecodeBase64PCM decodes the speech service's base64 payload into samples.
func DecodeBase64PCM(payload string) ([]float32, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding audio payload: %w", err)
	}
	return DecodePCM16(raw), nil
}

// Resample converts samples between rates with linear interpolation. It is
// only used on the capture path (typically 48kHz mic down to the service's
// 16kHz input rate), where fidelity beyond that is wasted on a speech model.
func Resample(samples []float32, fromRate, toRate int) []float32 {
	if fromRate == toRate || len(samples) == 0 {
		return samples
	}

	ratio := float64(fromRate) / float64(toRate)
	n := int(float64(len(samples)) / ratio)
	if n == 0 {
		return nil
	}

	out := make([]float32, n)
	for i := range out {
		pos := float64(i) * ratio
		j := int(pos)
		if j >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = samples[j]*(1-frac) + samples[j+1]*frac
	}
	return out
}
