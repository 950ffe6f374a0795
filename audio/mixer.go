package audio

// Mixer converts source-channel-order samples pulled from a ring buffer into
// the interleaved layout of the negotiated output configuration. One Mixer
// belongs to one playback session and is only touched by the hardware
// callback, so the scratch buffer needs no locking.
type Mixer struct {
	scratch []float32
}

func NewMixer() *Mixer {
	return &Mixer{
		scratch: make([]float32, 4096),
	}
}

// Fill writes len(dst) samples (len(dst)/outputChannels frames) by popping
// one sample per source channel per frame from rb. On underrun the missing
// samples are silence; Fill never blocks and produces a value for every
// output slot regardless of the channel-count relationship.
//
// All arithmetic is in the normalized float32 domain. Conversion to the
// device's native sample format happens later, in the device backend.
func (m *Mixer) Fill(dst []float32, rb *RingBuffer, outputChannels, sourceChannels int) {
	if outputChannels <= 0 || sourceChannels <= 0 || len(dst) == 0 {
		return
	}

	frames := len(dst) / outputChannels
	needed := frames * sourceChannels

	// Grow scratch if needed (but don't shrink to avoid thrashing)
	if cap(m.scratch) < needed {
		m.scratch = make([]float32, needed)
	}
	m.scratch = m.scratch[:needed]

	// One lock acquisition per callback; the remainder is silence-padded,
	// which is exactly the per-sample underrun substitution.
	got := rb.PopSlice(m.scratch)
	for i := got; i < needed; i++ {
		m.scratch[i] = 0
	}

	if outputChannels >= sourceChannels {
		m.upmix(dst, frames, outputChannels, sourceChannels)
	} else {
		m.downmix(dst, frames, outputChannels, sourceChannels)
	}
}

// upmix maps source channel i directly to output channel i and synthesizes
// the extra output channels: mono is replicated, stereo into >=4 channels
// uses a fixed surround table, anything else cycles modulo the source count.
func (m *Mixer) upmix(dst []float32, frames, outCh, srcCh int) {
	for f := range frames {
		src := m.scratch[f*srcCh : (f+1)*srcCh]
		out := dst[f*outCh : (f+1)*outCh]

		for i := range out {
			switch {
			case i < srcCh:
				out[i] = src[i]
			case srcCh == 1:
				out[i] = src[0]
			case srcCh == 2 && outCh > 2:
				switch i {
				case 2:
					out[i] = src[0] // rear left duplicates front left
				case 3:
					out[i] = src[1] // rear right duplicates front right
				case 4:
					out[i] = (src[0] + src[1]) * 0.5 // center
				case 5:
					out[i] = (src[0] + src[1]) * 0.3 // subwoofer, attenuated
				default:
					out[i] = src[i%srcCh]
				}
			default:
				out[i] = src[i%srcCh]
			}
		}
	}
}

// downmix folds source channels into fewer output channels: mono output
// averages everything, stereo output applies weighted folding of the
// correlated rear/center/sub channels, any other ratio maps proportionally.
func (m *Mixer) downmix(dst []float32, frames, outCh, srcCh int) {
	invSrc := float32(1.0) / float32(srcCh)

	for f := range frames {
		src := m.scratch[f*srcCh : (f+1)*srcCh]
		out := dst[f*outCh : (f+1)*outCh]

		switch {
		case outCh == 1 && srcCh == 2:
			out[0] = (src[0] + src[1]) * 0.5
		case outCh == 1:
			sum := float32(0)
			for _, s := range src {
				sum += s
			}
			out[0] = sum * invSrc
		case outCh == 2 && srcCh > 2:
			left := src[0]
			right := src[1]
			if srcCh > 2 {
				left += src[2] * 0.7
			}
			if srcCh > 3 {
				right += src[3] * 0.7
			}
			if srcCh > 4 {
				left += src[4] * 0.5
				right += src[4] * 0.5
			}
			if srcCh > 5 {
				left += src[5] * 0.3
				right += src[5] * 0.3
			}
			out[0] = clampSample(left)
			out[1] = clampSample(right)
		default:
			for i := range out {
				idx := i * srcCh / outCh
				if idx > srcCh-1 {
					idx = srcCh - 1
				}
				out[i] = src[idx]
			}
		}
	}
}

func clampSample(v float32) float32 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
