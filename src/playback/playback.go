// Package playback plays a finished buffer on the default output device.
package playback

import (
	"context"
	"io"
	"log"

	"github.com/hajimehoshi/oto"
)

const (
	channelNum        = 2
	bitDepthInBytes   = 2
	samplesPerCycle   = 1024
	bytesPerSample    = bitDepthInBytes * channelNum
	bufferSizeInBytes = samplesPerCycle * bytesPerSample // should be >= 4096
)

// stream serves a mono buffer as interleaved 16-bit stereo frames.
type stream struct {
	ctx context.Context
	out []float64
	pos int
}

func (s *stream) Read(buf []byte) (int, error) {
	select {
	case <-s.ctx.Done():
		return 0, io.EOF
	default:
	}
	if s.pos >= len(s.out) {
		return 0, io.EOF
	}
	frames := len(buf) / bytesPerSample
	if rest := len(s.out) - s.pos; frames > rest {
		frames = rest
	}
	n := frames * bytesPerSample
	for ch := 0; ch < channelNum; ch++ {
		writeBuffer(s.out[s.pos:s.pos+frames], buf[:n], ch)
	}
	s.pos += frames
	return n, nil
}

func writeBuffer(out []float64, buf []byte, ch int) {
	for i, value := range out {
		if value > 1 {
			value = 1
		} else if value < -1 {
			value = -1
		}
		const max = 32767
		b := int16(value * max)
		buf[bytesPerSample*i+2*ch] = byte(b)
		buf[bytesPerSample*i+2*ch+1] = byte(b >> 8)
	}
}

// Play blocks until samples have been handed to the device or ctx is done.
func Play(ctx context.Context, samples []float64, sampleRate int, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}
	otoContext, err := oto.NewContext(sampleRate, channelNum, bitDepthInBytes, bufferSizeInBytes)
	if err != nil {
		return err
	}
	defer func() {
		if err := otoContext.Close(); err != nil {
			logger.Printf("error: %v", err)
		}
	}()
	p := otoContext.NewPlayer()
	defer func() {
		if err := p.Close(); err != nil {
			logger.Printf("error: %v", err)
		}
	}()
	s := &stream{ctx: ctx, out: samples}
	if _, err := io.CopyBuffer(p, s, make([]byte, bufferSizeInBytes)); err != nil {
		return err
	}
	logger.Printf("played %d of %d samples", s.pos, len(samples))
	return nil
}
