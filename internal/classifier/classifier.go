// Package classifier wraps a pre-trained fixed-vocabulary multi-label sound
// classifier (YAMNet-style). It turns a raw audio file into a short ranked
// list of (label, score) pairs.
//
// The model and its class map are fetched from a model repository into a
// local cache directory once, at construction time, and shared read-only by
// all requests afterwards. Classification is strictly best-effort: any
// failure (unreadable audio, runner error) yields an empty prediction list,
// never an error visible to the HTTP client.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"
)

// Model input constants. The scorer consumes mono audio at SampleRate,
// framed into windows of WindowSec with a hop of HopSec.
const (
	SampleRate = 16000
	WindowSec  = 0.96
	HopSec     = 0.48
	// TopK is the number of labels reported per clip.
	TopK = 5
)

// Prediction is one (label, score) pair. Scores lie in [0, 1].
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Service scores audio clips against the fixed vocabulary. Construct once at
// process start with New and share by reference; the vocabulary and model
// artifacts are loaded exactly once and never reloaded per request.
type Service struct {
	scorer Scorer
	vocab  []string
}

// Options configures New.
type Options struct {
	RunnerCmd   string // inference runner binary
	ModelURL    string // model artifact source
	ClassMapURL string // class map CSV source
	CacheDir    string // local artifact cache
	HTTPClient  *http.Client
}

// New fetches missing model artifacts into the cache, loads the class
// vocabulary, and returns a ready Service.
func New(ctx context.Context, opts Options) (*Service, error) {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if err := os.MkdirAll(opts.CacheDir, 0o755); err != nil {
		return nil, err
	}

	modelPath := filepath.Join(opts.CacheDir, filepath.Base(opts.ModelURL))
	classMapPath := filepath.Join(opts.CacheDir, filepath.Base(opts.ClassMapURL))
	if err := fetchIfMissing(ctx, opts.HTTPClient, opts.ModelURL, modelPath); err != nil {
		return nil, fmt.Errorf("classifier: fetch model: %w", err)
	}
	if err := fetchIfMissing(ctx, opts.HTTPClient, opts.ClassMapURL, classMapPath); err != nil {
		return nil, fmt.Errorf("classifier: fetch class map: %w", err)
	}

	vocab, err := loadVocabulary(classMapPath)
	if err != nil {
		return nil, err
	}

	return &Service{
		scorer: &ExecScorer{Cmd: opts.RunnerCmd, ModelPath: modelPath},
		vocab:  vocab,
	}, nil
}

// NewWithScorer wires a Service around an explicit scorer and vocabulary.
// Used by tests and by deployments that embed their own runner.
func NewWithScorer(s Scorer, vocab []string) *Service {
	return &Service{scorer: s, vocab: vocab}
}

// Classify scores the audio file at path and returns at most TopK
// predictions ranked by descending mean score. The empty slice it returns on
// any failure is deliberate: classification never fails a request.
func (s *Service) Classify(ctx context.Context, path string) []Prediction {
	preds, err := s.classify(ctx, path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("classification degraded")
		return []Prediction{}
	}
	return preds
}

func (s *Service) classify(ctx context.Context, path string) ([]Prediction, error) {
	if s == nil || s.scorer == nil {
		return nil, errors.New("classifier: not configured")
	}

	samples, err := loadWaveform(path, SampleRate)
	if err != nil {
		return nil, err
	}

	window := int(WindowSec * SampleRate)
	hop := int(HopSec * SampleRate)
	frames := frame(samples, window, hop)
	if len(frames) == 0 {
		return nil, errEmptyAudio
	}

	scores, err := s.scorer.ScoreFrames(ctx, frames, SampleRate)
	if err != nil {
		return nil, err
	}

	return s.rank(scores)
}

// rank averages per-frame scores across the clip and selects the TopK
// classes by mean score, descending. Scores are clamped to [0, 1].
func (s *Service) rank(frameScores [][]float64) ([]Prediction, error) {
	mean := make([]float64, len(s.vocab))
	for _, row := range frameScores {
		if len(row) != len(s.vocab) {
			return nil, fmt.Errorf("classifier: score vector has %d entries, vocabulary has %d", len(row), len(s.vocab))
		}
		for i, v := range row {
			mean[i] += v
		}
	}
	n := float64(len(frameScores))
	for i := range mean {
		mean[i] /= n
	}

	idx := make([]int, len(mean))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return mean[idx[a]] > mean[idx[b]] })

	k := TopK
	if k > len(idx) {
		k = len(idx)
	}
	out := make([]Prediction, 0, k)
	for _, i := range idx[:k] {
		out = append(out, Prediction{Label: s.vocab[i], Score: clamp01(mean[i])})
	}
	return out, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// fetchIfMissing downloads url to dst unless dst already exists. The write
// goes through a temp file so a torn download never poisons the cache.
func fetchIfMissing(ctx context.Context, httpc *http.Client, url, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d fetching %s", resp.StatusCode, url)
	}

	tmp := dst + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
