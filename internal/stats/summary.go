package stats

import (
	"math"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"survivorrl/internal/model"
)

// Summarize aggregates per-episode rewards for modelName. The standard
// deviation is the population deviation around the sample mean. An empty
// reward list yields a zero-episode result with all statistics at 0.
func Summarize(modelName string, rewards []float64, at time.Time) model.EvaluationResult {
	result := model.EvaluationResult{
		VersionedRecord: model.CurrentVersion(),
		ModelName:       modelName,
		Timestamp:       model.NewTimestamp(at),
		EpisodeCount:    len(rewards),
		Rewards:         append([]float64{}, rewards...),
	}
	if len(rewards) == 0 {
		return result
	}

	mean, variance := stat.PopMeanVariance(rewards, nil)
	result.MaxReward = floats.Max(rewards)
	result.MinReward = floats.Min(rewards)
	// sum/n can round past the extrema when every sample is equal.
	result.MeanReward = math.Min(math.Max(mean, result.MinReward), result.MaxReward)
	result.StdDev = math.Sqrt(variance)
	return result
}

// Recorder collects episode rewards for one model as a trainer reports them.
type Recorder struct {
	modelName string

	mu      sync.Mutex
	rewards []float64
}

func NewRecorder(modelName string) *Recorder {
	return &Recorder{modelName: modelName}
}

func (r *Recorder) ModelName() string {
	return r.modelName
}

func (r *Recorder) Record(reward float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rewards = append(r.rewards, reward)
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.rewards)
}

func (r *Recorder) Rewards() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]float64{}, r.rewards...)
}

// Result summarizes everything recorded so far.
func (r *Recorder) Result(at time.Time) model.EvaluationResult {
	return Summarize(r.modelName, r.Rewards(), at)
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rewards = nil
}
