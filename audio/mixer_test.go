// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"testing"
)

func fillRing(t *testing.T, samples []float32) *RingBuffer {
	t.Helper()

	rb, err := NewRingBuffer(4096)
	if err != nil {
		t.Fatalf("NewRingBuffer() error = %v", err)
	}
	if n := rb.Push(samples); n != len(samples) {
		t.Fatalf("Push() = %d, want %d", n, len(samples))
	}
	return rb
}

func TestMixer_AllChannelCombinations(t *testing.T) {
	t.Parallel()

	// Every source/output combination in 1..6 must produce a value for
	// every output slot without panicking.
	for srcCh := 1; srcCh <= 6; srcCh++ {
		for outCh := 1; outCh <= 6; outCh++ {
			t.Run(fmt.Sprintf("src%d_out%d", srcCh, outCh), func(t *testing.T) {
				t.Parallel()

				const frames = 8
				samples := make([]float32, frames*srcCh)
				for i := range samples {
					samples[i] = 0.25
				}

				rb := fillRing(t, samples)
				mixer := NewMixer()

				dst := make([]float32, frames*outCh)
				for i := range dst {
					dst[i] = -99 // sentinel: every slot must be overwritten
				}

				mixer.Fill(dst, rb, outCh, srcCh)

				for i, v := range dst {
					if v == -99 {
						t.Fatalf("dst[%d] was not written", i)
					}
					if v < -1.0 || v > 1.0 {
						t.Errorf("dst[%d] = %v outside [-1, 1]", i, v)
					}
				}
			})
		}
	}
}

func TestMixer_MonoToStereo(t *testing.T) {
	t.Parallel()

	const frames = 5
	samples := make([]float32, frames)
	for i := range samples {
		samples[i] = float32(i) * 0.1
	}

	rb := fillRing(t, samples)
	mixer := NewMixer()

	dst := make([]float32, frames*2)
	mixer.Fill(dst, rb, 2, 1)

	for f := range frames {
		want := float32(f) * 0.1
		if dst[f*2] != want || dst[f*2+1] != want {
			t.Errorf("frame %d: L=%v R=%v, want both %v", f, dst[f*2], dst[f*2+1], want)
		}
	}
}

func TestMixer_StereoToMono(t *testing.T) {
	t.Parallel()

	// L=1.0, R=-0.5 -> mono (1.0 + -0.5) * 0.5 = 0.25, exactly
	rb := fillRing(t, []float32{1.0, -0.5})
	mixer := NewMixer()

	dst := make([]float32, 1)
	mixer.Fill(dst, rb, 1, 2)

	if dst[0] != 0.25 {
		t.Errorf("mono downmix = %v, want 0.25", dst[0])
	}
}

func TestMixer_StereoToFivePointOne(t *testing.T) {
	t.Parallel()

	left := float32(0.8)
	right := float32(0.2)

	rb := fillRing(t, []float32{left, right})
	mixer := NewMixer()

	dst := make([]float32, 6)
	mixer.Fill(dst, rb, 6, 2)

	if dst[0] != left || dst[1] != right {
		t.Errorf("front pair = (%v, %v), want (%v, %v)", dst[0], dst[1], left, right)
	}
	if dst[2] != left || dst[3] != right {
		t.Errorf("rear pair = (%v, %v), want duplicated front (%v, %v)", dst[2], dst[3], left, right)
	}

	center := (left + right) * 0.5
	if dst[4] != center {
		t.Errorf("center = %v, want %v", dst[4], center)
	}

	sub := (left + right) * 0.3
	if dst[5] != sub {
		t.Errorf("subwoofer = %v, want %v", dst[5], sub)
	}
}

func TestMixer_FivePointOneToStereo(t *testing.T) {
	t.Parallel()

	// FL FR RL RR C LFE
	src := []float32{0.1, 0.2, 0.1, 0.2, 0.2, 0.1}
	rb := fillRing(t, src)
	mixer := NewMixer()

	dst := make([]float32, 2)
	mixer.Fill(dst, rb, 2, 6)

	wantL := src[0] + src[2]*0.7 + src[4]*0.5 + src[5]*0.3
	wantR := src[1] + src[3]*0.7 + src[4]*0.5 + src[5]*0.3

	if dst[0] != wantL {
		t.Errorf("left fold = %v, want %v", dst[0], wantL)
	}
	if dst[1] != wantR {
		t.Errorf("right fold = %v, want %v", dst[1], wantR)
	}
}

func TestMixer_DownmixClamped(t *testing.T) {
	t.Parallel()

	// Hot source channels must clamp to [-1, 1] after weighted folding
	src := []float32{1.0, 1.0, 1.0, 1.0, 1.0, 1.0}
	rb := fillRing(t, src)
	mixer := NewMixer()

	dst := make([]float32, 2)
	mixer.Fill(dst, rb, 2, 6)

	if dst[0] != 1.0 || dst[1] != 1.0 {
		t.Errorf("fold = (%v, %v), want clamped (1, 1)", dst[0], dst[1])
	}
}

func TestMixer_UnderrunFillsSilence(t *testing.T) {
	t.Parallel()

	// Only one frame available; the rest of the callback must be silence
	rb := fillRing(t, []float32{0.5, 0.5})
	mixer := NewMixer()

	dst := make([]float32, 8) // 4 stereo frames requested
	for i := range dst {
		dst[i] = -99
	}

	mixer.Fill(dst, rb, 2, 2)

	if dst[0] != 0.5 || dst[1] != 0.5 {
		t.Errorf("first frame = (%v, %v), want (0.5, 0.5)", dst[0], dst[1])
	}

	for i := 2; i < len(dst); i++ {
		if dst[i] != 0 {
			t.Errorf("dst[%d] = %v, want silence after underrun", i, dst[i])
		}
	}
}

func TestMixer_MonoAverageOfFourChannels(t *testing.T) {
	t.Parallel()

	rb := fillRing(t, []float32{0.1, 0.2, 0.3, 0.4})
	mixer := NewMixer()

	dst := make([]float32, 1)
	mixer.Fill(dst, rb, 1, 4)

	want := (float32(0.1) + 0.2 + 0.3 + 0.4) * 0.25
	if dst[0] != want {
		t.Errorf("mono average = %v, want %v", dst[0], want)
	}
}
