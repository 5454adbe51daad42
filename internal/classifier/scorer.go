// Scorer abstraction over the pre-trained model. The model's numerical
// internals are opaque to this service; all it owes us is a frames×classes
// score matrix for a mono waveform at the expected sample rate.
package classifier

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
)

// Scorer produces per-frame class scores for a mono waveform. Implementations
// must be safe for concurrent use; the production scorer is stateless between
// calls (the heavy model state lives in the runner's on-disk cache).
type Scorer interface {
	// ScoreFrames returns one score vector per input frame. Every vector
	// must have one entry per vocabulary class.
	ScoreFrames(ctx context.Context, frames [][]float64, sampleRate int) ([][]float64, error)
}

// ExecScorer shells out to an inference runner binary. The runner receives
// the model path and sample rate as arguments, reads little-endian float32
// PCM (all frames concatenated) on stdin, and writes a JSON object
// {"scores": [[...], ...]} with one row per frame on stdout.
type ExecScorer struct {
	// Cmd is the runner binary, resolved via PATH or absolute.
	Cmd string
	// ModelPath is the cached model artifact handed to the runner.
	ModelPath string
}

// runnerOutput is the runner's stdout payload.
type runnerOutput struct {
	Scores [][]float64 `json:"scores"`
}

// ScoreFrames invokes the runner once for the whole clip.
func (s *ExecScorer) ScoreFrames(ctx context.Context, frames [][]float64, sampleRate int) ([][]float64, error) {
	if len(frames) == 0 {
		return nil, nil
	}
	frameLen := len(frames[0])

	var stdin bytes.Buffer
	stdin.Grow(len(frames) * frameLen * 4)
	for _, fr := range frames {
		for _, v := range fr {
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], math.Float32bits(float32(v)))
			stdin.Write(b[:])
		}
	}

	cmd := exec.CommandContext(ctx, s.Cmd,
		"--model", s.ModelPath,
		"--sample-rate", fmt.Sprintf("%d", sampleRate),
		"--frame-len", fmt.Sprintf("%d", frameLen),
	)
	cmd.Stdin = &stdin

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("classifier: runner: %w", err)
	}

	var ro runnerOutput
	if err := json.Unmarshal(out, &ro); err != nil {
		return nil, fmt.Errorf("classifier: runner output: %w", err)
	}
	if len(ro.Scores) != len(frames) {
		return nil, fmt.Errorf("classifier: runner returned %d frames, want %d", len(ro.Scores), len(frames))
	}
	return ro.Scores, nil
}
