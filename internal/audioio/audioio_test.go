package audioio

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestResamplePreservesSignalShape(t *testing.T) {
	// A constant signal must stay constant through interpolation.
	in := make([]float64, 800)
	for i := range in {
		in[i] = 0.5
	}
	out := Resample(in, 8000, 16000)
	if len(out) != 1600 {
		t.Fatalf("expected 1600 samples, got %d", len(out))
	}
	for i, v := range out {
		if math.Abs(v-0.5) > 1e-9 {
			t.Fatalf("sample %d drifted: %v", i, v)
		}
	}
}

func TestResampleToleratesNonPositiveRates(t *testing.T) {
	in := []float64{0.1, 0.2, 0.3}
	for _, rates := range [][2]int{{-8000, 16000}, {0, 16000}, {16000, -1}, {16000, 0}} {
		out := Resample(in, rates[0], rates[1])
		if len(out) != len(in) {
			t.Fatalf("rates %v: expected untouched signal, got %d samples", rates, len(out))
		}
	}
}

func TestDecodePCM16(t *testing.T) {
	// 0x7FFF is full scale positive, 0x8000 full scale negative.
	pcm := []byte{0xFF, 0x7F, 0x00, 0x80}
	out := DecodePCM16(pcm)
	if len(out) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(out))
	}
	if out[0] < 0.99 || out[1] > -0.99 {
		t.Fatalf("unexpected decoded values %v", out)
	}
}

func TestEncodeWAVRoundTripHeader(t *testing.T) {
	data, err := EncodeWAV(make([]float64, 160), 16000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) < 44 {
		t.Fatalf("wav stream too short: %d bytes", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatalf("missing riff/wave markers: %q", data[0:12])
	}
}

func TestWriteWAVFileMatchesStreamEncoding(t *testing.T) {
	samples := make([]float64, 160)
	for i := range samples {
		samples[i] = math.Sin(float64(i) / 10)
	}

	path := filepath.Join(t.TempDir(), "out.wav")
	if err := WriteWAVFile(path, samples, 16000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fromFile, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	fromStream, err := EncodeWAV(samples, 16000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(fromFile) != string(fromStream) {
		t.Fatal("file and stream encodings diverge")
	}
}
