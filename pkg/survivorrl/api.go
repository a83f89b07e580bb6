package survivorrl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"survivorrl/internal/compare"
	"survivorrl/internal/model"
	"survivorrl/internal/registry"
	"survivorrl/internal/reward"
	"survivorrl/internal/stats"
	"survivorrl/internal/storage"
)

const (
	defaultReportsDir = "reports"
	defaultDBPath     = "survivorrl.db"
)

var ErrEvaluationNotFound = errors.New("evaluation not found")

type Options struct {
	StoreKind  string
	DBPath     string
	ReportsDir string
	Clock      registry.Clock
	Now        func() time.Time
}

type Client struct {
	store    storage.Store
	registry *registry.Registry
	now      func() time.Time

	reportsDir string
}

type RegisterRequest struct {
	Name        string
	Path        string
	Description string
	FileSize    int64
	Annotations map[string]string
}

type EvaluateRequest struct {
	Name string
	// Version defaults to the latest registered version.
	Version int
	Rewards []float64
}

type EvaluationSummary struct {
	Result      model.EvaluationResult
	SamplesPath string
	Curve       []stats.CurvePoint
}

type CompareSummary struct {
	Comparison model.ModelComparison
	ReportDir  string
}

type RewardRequest struct {
	Preset string
	// Blend, when set, interpolates from Preset towards it by T.
	Blend   string
	T       float64
	Scale   float64
	Outcome reward.Outcome
}

type RewardSummary struct {
	Weights reward.Weights `json:"weights"`
	Terms   reward.Terms   `json:"terms"`
	Total   float64        `json:"total"`
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	reportsDir := opts.ReportsDir
	if reportsDir == "" {
		reportsDir = defaultReportsDir
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:      store,
		registry:   registry.New(registry.Options{Clock: opts.Clock, Now: now, Store: store}),
		now:        now,
		reportsDir: reportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

func (c *Client) RegisterModel(ctx context.Context, req RegisterRequest) (model.ModelMetadata, error) {
	if err := c.Init(ctx); err != nil {
		return model.ModelMetadata{}, err
	}
	return c.registry.Register(ctx, registry.Registration{
		Name:        req.Name,
		Path:        req.Path,
		Description: req.Description,
		FileSize:    req.FileSize,
		Annotations: model.Annotations(req.Annotations),
	})
}

// ListModels returns the latest version of every registered model.
func (c *Client) ListModels(ctx context.Context) ([]model.ModelMetadata, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	names, err := c.registry.Names(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.ModelMetadata, 0, len(names))
	for _, name := range names {
		meta, err := c.registry.Latest(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, meta)
	}
	return out, nil
}

func (c *Client) ModelVersions(ctx context.Context, name string) ([]model.ModelMetadata, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	return c.registry.Versions(ctx, name)
}

// RecordEvaluation summarizes per-episode rewards for a registered model
// version, stores the result and writes the raw samples under the reports
// directory.
func (c *Client) RecordEvaluation(ctx context.Context, req EvaluateRequest) (EvaluationSummary, error) {
	if err := c.Init(ctx); err != nil {
		return EvaluationSummary{}, err
	}
	meta, err := c.resolveVersion(ctx, req.Name, req.Version)
	if err != nil {
		return EvaluationSummary{}, err
	}

	result := stats.Summarize(meta.Name, req.Rewards, c.now())
	result.ModelVersion = meta.Version
	// Samples go first so a failed write leaves nothing in the store.
	samplesPath, err := stats.WriteEvaluationSamples(c.reportsDir, result)
	if err != nil {
		return EvaluationSummary{}, fmt.Errorf("write samples %s v%d: %w", meta.Name, meta.Version, err)
	}
	if err := c.store.SaveEvaluation(ctx, result); err != nil {
		_ = os.Remove(samplesPath)
		return EvaluationSummary{}, fmt.Errorf("save evaluation %s v%d: %w", meta.Name, meta.Version, err)
	}
	return EvaluationSummary{
		Result:      result,
		SamplesPath: samplesPath,
		Curve:       stats.LearningCurve(result.Rewards, 0),
	}, nil
}

// CompareModels ranks the most recent evaluation of each named model,
// persists the comparison and writes its report.
func (c *Client) CompareModels(ctx context.Context, names []string) (CompareSummary, error) {
	if err := c.Init(ctx); err != nil {
		return CompareSummary{}, err
	}
	if len(names) == 0 {
		return CompareSummary{}, errors.New("at least one model name is required")
	}

	results := make(map[string]model.EvaluationResult, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		result, ok, err := storage.LatestEvaluation(ctx, c.store, name, 0)
		if err != nil {
			return CompareSummary{}, err
		}
		if !ok {
			return CompareSummary{}, fmt.Errorf("%w: %s", ErrEvaluationNotFound, name)
		}
		results[name] = result
	}

	comparison := compare.Compare(results, c.now())
	comparison.ID = uuid.NewString()
	id, err := c.store.SaveComparison(ctx, comparison)
	if err != nil {
		return CompareSummary{}, fmt.Errorf("save comparison: %w", err)
	}
	comparison.ID = id

	reportDir, err := stats.WriteComparisonReport(c.reportsDir, comparison)
	if err != nil {
		return CompareSummary{}, err
	}
	return CompareSummary{Comparison: comparison, ReportDir: reportDir}, nil
}

func (c *Client) GetComparison(ctx context.Context, id string) (model.ModelComparison, error) {
	if err := c.Init(ctx); err != nil {
		return model.ModelComparison{}, err
	}
	comparison, ok, err := c.store.GetComparison(ctx, id)
	if err != nil {
		return model.ModelComparison{}, err
	}
	if !ok {
		return model.ModelComparison{}, fmt.Errorf("comparison not found: %s", id)
	}
	return comparison, nil
}

// CompareVersions pairs two registered versions of name with the latest
// evaluation recorded for each.
func (c *Client) CompareVersions(ctx context.Context, name string, v1, v2 int) (model.ModelVersionComparison, error) {
	if err := c.Init(ctx); err != nil {
		return model.ModelVersionComparison{}, err
	}
	meta1, err := c.registry.Get(ctx, name, v1)
	if err != nil {
		return model.ModelVersionComparison{}, err
	}
	meta2, err := c.registry.Get(ctx, name, v2)
	if err != nil {
		return model.ModelVersionComparison{}, err
	}
	r1, err := c.versionEvaluation(ctx, name, v1)
	if err != nil {
		return model.ModelVersionComparison{}, err
	}
	r2, err := c.versionEvaluation(ctx, name, v2)
	if err != nil {
		return model.ModelVersionComparison{}, err
	}
	return compare.CompareVersions(name, meta1, meta2, r1, r2)
}

// ComputeReward resolves the requested weights and shapes the outcome with
// them. It needs no store.
func ComputeReward(req RewardRequest) (RewardSummary, error) {
	presetName := req.Preset
	if presetName == "" {
		presetName = "default"
	}
	weights, ok := reward.Preset(presetName)
	if !ok {
		return RewardSummary{}, fmt.Errorf("unknown reward preset %q (known: %s)", presetName, strings.Join(reward.PresetNames(), ", "))
	}
	if req.Blend != "" {
		target, ok := reward.Preset(req.Blend)
		if !ok {
			return RewardSummary{}, fmt.Errorf("unknown reward preset %q (known: %s)", req.Blend, strings.Join(reward.PresetNames(), ", "))
		}
		weights = reward.Lerp(weights, target, req.T)
	}
	if req.Scale != 0 {
		weights = reward.Scale(weights, req.Scale)
	}

	terms := reward.Breakdown(weights, req.Outcome)
	return RewardSummary{Weights: weights, Terms: terms, Total: terms.Total()}, nil
}

func (c *Client) resolveVersion(ctx context.Context, name string, version int) (model.ModelMetadata, error) {
	if version > 0 {
		return c.registry.Get(ctx, name, version)
	}
	return c.registry.Latest(ctx, name)
}

func (c *Client) versionEvaluation(ctx context.Context, name string, version int) (model.EvaluationResult, error) {
	result, ok, err := storage.LatestEvaluation(ctx, c.store, name, version)
	if err != nil {
		return model.EvaluationResult{}, err
	}
	if !ok {
		return model.EvaluationResult{}, fmt.Errorf("%w: %s v%d", ErrEvaluationNotFound, name, version)
	}
	return result, nil
}
