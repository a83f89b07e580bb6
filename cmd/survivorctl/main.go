package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"survivorrl/internal/action"
	"survivorrl/internal/config"
	"survivorrl/internal/model"
	"survivorrl/internal/reward"
	"survivorrl/internal/stats"
	"survivorrl/internal/storage"
	api "survivorrl/pkg/survivorrl"
)

const defaultReportsDir = "reports"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}
	configureLogging(false)

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "register":
		return runRegister(ctx, args[1:])
	case "models":
		return runModels(ctx, args[1:])
	case "evaluate":
		return runEvaluate(ctx, args[1:])
	case "compare":
		return runCompare(ctx, args[1:])
	case "compare-versions":
		return runCompareVersions(ctx, args[1:])
	case "reports":
		return runReports(ctx, args[1:])
	case "reward":
		return runReward(ctx, args[1:])
	case "actions":
		return runActions(ctx, args[1:])
	case "encode":
		return runEncode(ctx, args[1:])
	case "decode":
		return runDecode(ctx, args[1:])
	case "profile":
		return runProfile(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

// clientFlags are the storage and logging flags shared by every command that
// touches the registry.
type clientFlags struct {
	storeKind  *string
	dbPath     *string
	reportsDir *string
	verbose    *bool
}

func addClientFlags(fs *flag.FlagSet) clientFlags {
	return clientFlags{
		storeKind:  fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite"),
		dbPath:     fs.String("db-path", "survivorrl.db", "sqlite database path"),
		reportsDir: fs.String("reports-dir", defaultReportsDir, "directory for evaluation and comparison reports"),
		verbose:    fs.Bool("v", false, "enable debug logging"),
	}
}

func (f clientFlags) open(ctx context.Context) (*api.Client, error) {
	configureLogging(*f.verbose)

	client, err := api.New(api.Options{
		StoreKind:  *f.storeKind,
		DBPath:     *f.dbPath,
		ReportsDir: *f.reportsDir,
	})
	if err != nil {
		return nil, err
	}
	if err := client.Init(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	slog.Debug("store opened", "store", *f.storeKind, "db_path", *f.dbPath)
	return client, nil
}

func closeClient(client *api.Client) {
	if err := client.Close(); err != nil {
		slog.Warn("close store", "error", err)
		return
	}
	slog.Debug("store closed")
}

func configureLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	cf := addClientFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := cf.open(ctx)
	if err != nil {
		return err
	}
	defer closeClient(client)

	fmt.Printf("initialized store=%s\n", *cf.storeKind)
	return nil
}

func runRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	cf := addClientFlags(fs)
	name := fs.String("name", "", "model name")
	path := fs.String("path", "", "model artifact path")
	description := fs.String("description", "", "free-text description")
	size := fs.Int64("size", -1, "artifact size in bytes; read from --path when omitted")
	annotations := annotationFlag{}
	fs.Var(annotations, "annotate", "extra key=value annotation (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return errors.New("register requires --name")
	}

	fileSize := *size
	if fileSize < 0 {
		fileSize = 0
		if *path != "" {
			if info, err := os.Stat(*path); err == nil {
				fileSize = info.Size()
			} else {
				slog.Debug("artifact size unavailable", "path", *path, "error", err)
			}
		}
	}

	client, err := cf.open(ctx)
	if err != nil {
		return err
	}
	defer closeClient(client)

	meta, err := client.RegisterModel(ctx, api.RegisterRequest{
		Name:        *name,
		Path:        *path,
		Description: *description,
		FileSize:    fileSize,
		Annotations: annotations,
	})
	if err != nil {
		return err
	}
	slog.Info("model registered", "name", meta.Name, "version", meta.Version)
	fmt.Printf("registered name=%s version=%d path=%s size=%s created_at=%q\n",
		meta.Name, meta.Version, meta.Path, formatSize(meta.FileSize), meta.CreatedAt.String())
	return nil
}

func runModels(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("models", flag.ContinueOnError)
	cf := addClientFlags(fs)
	name := fs.String("name", "", "list every version of one model")
	jsonOut := fs.Bool("json", false, "emit models as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := cf.open(ctx)
	if err != nil {
		return err
	}
	defer closeClient(client)

	var models []model.ModelMetadata
	if *name != "" {
		models, err = client.ModelVersions(ctx, *name)
	} else {
		models, err = client.ListModels(ctx)
	}
	if err != nil {
		return err
	}

	if *jsonOut {
		return printJSON(models)
	}
	if len(models) == 0 {
		fmt.Println("no models found")
		return nil
	}
	for _, meta := range models {
		fmt.Printf("name=%s version=%d size=%s registered=%s path=%s description=%q\n",
			meta.Name,
			meta.Version,
			formatSize(meta.FileSize),
			humanize.Time(meta.CreatedAt.Time),
			meta.Path,
			meta.Description,
		)
	}
	return nil
}

func runEvaluate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("evaluate", flag.ContinueOnError)
	cf := addClientFlags(fs)
	name := fs.String("name", "", "model name")
	version := fs.Int("version", 0, "model version (default latest)")
	rewardsCSV := fs.String("rewards", "", "comma-separated per-episode rewards")
	rewardsFile := fs.String("rewards-file", "", "episode,reward CSV file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return errors.New("evaluate requires --name")
	}
	if (*rewardsCSV == "") == (*rewardsFile == "") {
		return errors.New("evaluate requires exactly one of --rewards or --rewards-file")
	}

	var rewards []float64
	var err error
	if *rewardsFile != "" {
		rewards, err = stats.ReadEvaluationSamples(*rewardsFile)
	} else {
		rewards, err = parseFloatList(*rewardsCSV)
	}
	if err != nil {
		return err
	}

	client, err := cf.open(ctx)
	if err != nil {
		return err
	}
	defer closeClient(client)

	summary, err := client.RecordEvaluation(ctx, api.EvaluateRequest{Name: *name, Version: *version, Rewards: rewards})
	if err != nil {
		return err
	}
	result := summary.Result
	slog.Info("evaluation recorded", "name", result.ModelName, "version", result.ModelVersion, "episodes", result.EpisodeCount)
	fmt.Printf("evaluated name=%s version=%d episodes=%d mean=%.4f std=%.4f min=%.4f max=%.4f samples=%s\n",
		result.ModelName,
		result.ModelVersion,
		result.EpisodeCount,
		result.MeanReward,
		result.StdDev,
		result.MinReward,
		result.MaxReward,
		summary.SamplesPath,
	)
	if best, ok := stats.BestWindow(summary.Curve); ok {
		fmt.Printf("best_window episode=%d moving_mean=%.4f\n", best.Episode, best.Value)
	}
	return nil
}

func runCompare(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	cf := addClientFlags(fs)
	names := fs.String("names", "", "comma-separated model names")
	jsonOut := fs.Bool("json", false, "emit comparison as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	list := splitList(*names)
	if len(list) == 0 {
		return errors.New("compare requires --names")
	}

	client, err := cf.open(ctx)
	if err != nil {
		return err
	}
	defer closeClient(client)

	summary, err := client.CompareModels(ctx, list)
	if err != nil {
		return err
	}
	comparison := summary.Comparison
	slog.Info("comparison saved", "id", comparison.ID, "models", len(comparison.ModelNames), "report_dir", summary.ReportDir)

	if *jsonOut {
		return printJSON(comparison)
	}
	fmt.Printf("comparison id=%s report=%s\n", comparison.ID, summary.ReportDir)
	for i, name := range comparison.Ranking {
		result := comparison.Results[name]
		fmt.Printf("rank=%d name=%s version=%d mean=%.4f std=%.4f episodes=%d\n",
			i+1, name, result.ModelVersion, result.MeanReward, result.StdDev, result.EpisodeCount)
	}
	return nil
}

func runCompareVersions(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("compare-versions", flag.ContinueOnError)
	cf := addClientFlags(fs)
	name := fs.String("name", "", "model name")
	v1 := fs.Int("v1", 0, "first version")
	v2 := fs.Int("v2", 0, "second version")
	jsonOut := fs.Bool("json", false, "emit comparison as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *v1 <= 0 || *v2 <= 0 {
		return errors.New("compare-versions requires --name, --v1 and --v2")
	}

	client, err := cf.open(ctx)
	if err != nil {
		return err
	}
	defer closeClient(client)

	cmp, err := client.CompareVersions(ctx, *name, *v1, *v2)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(cmp)
	}
	fmt.Printf("name=%s v%d_mean=%.4f v%d_mean=%.4f delta=%.4f\n",
		cmp.ModelName, cmp.Version1, cmp.Result1.MeanReward, cmp.Version2, cmp.Result2.MeanReward, cmp.MeanDelta())
	return nil
}

func runReports(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("reports", flag.ContinueOnError)
	reportsDir := fs.String("reports-dir", defaultReportsDir, "directory for evaluation and comparison reports")
	limit := fs.Int("limit", 20, "max reports to list")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	reports, err := stats.ListComparisonReports(*reportsDir)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Println("no reports found")
		return nil
	}
	if len(reports) > *limit {
		reports = reports[:*limit]
	}
	for _, report := range reports {
		best := ""
		if len(report.Ranking) > 0 {
			best = report.Ranking[0]
		}
		fmt.Printf("id=%s compared_at=%q models=%d best=%s\n", report.ID, report.Timestamp.String(), len(report.ModelNames), best)
	}
	return nil
}

func runReward(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("reward", flag.ContinueOnError)
	preset := fs.String("preset", "default", "weight preset: "+strings.Join(reward.PresetNames(), "|"))
	blend := fs.String("blend", "", "second preset to interpolate towards")
	t := fs.Float64("t", 0, "interpolation factor in [0,1] for --blend")
	scale := fs.Float64("scale", 0, "multiply every weight by this factor when non-zero")
	damage := fs.Float64("damage", 0, "damage dealt")
	survival := fs.Float64("survival", 0, "survival time")
	coordination := fs.Float64("coordination", 0, "coordination bonus")
	positioning := fs.Float64("positioning", 0, "positioning bonus")
	dead := fs.Bool("dead", false, "agent died")
	timeout := fs.Bool("timeout", false, "episode timed out")
	jsonOut := fs.Bool("json", false, "emit weights and terms as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	summary, err := api.ComputeReward(api.RewardRequest{
		Preset: *preset,
		Blend:  *blend,
		T:      *t,
		Scale:  *scale,
		Outcome: reward.Outcome{
			DamageDealt:       *damage,
			SurvivalTime:      *survival,
			CoordinationBonus: *coordination,
			PositioningBonus:  *positioning,
			IsDead:            *dead,
			IsTimeout:         *timeout,
		},
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(summary)
	}
	fmt.Printf("reward=%.4f damage=%.4f survival=%.4f coordination=%.4f positioning=%.4f death=%.4f timeout=%.4f\n",
		summary.Total,
		summary.Terms.Damage,
		summary.Terms.Survival,
		summary.Terms.Coordination,
		summary.Terms.Positioning,
		summary.Terms.Death,
		summary.Terms.Timeout,
	)
	return nil
}

func runActions(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("actions", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	for _, a := range action.All() {
		fmt.Printf("code=%d name=%s color=%s\n", int(a), a, a.Color())
	}
	return nil
}

func runProfile(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	path := fs.String("config", "", "training profile JSON (default profile when omitted)")
	jsonOut := fs.Bool("json", false, "print resolved profile as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	profile := config.Default()
	if *path != "" {
		loaded, err := config.Load(*path)
		if err != nil {
			return err
		}
		profile = loaded
	}
	if !profile.Valid() {
		return fmt.Errorf("invalid training profile: sizes and learning parameters must be positive")
	}
	outOfBounds := profile.OutOfBounds()
	for _, name := range outOfBounds {
		bounds := config.RecommendedBounds[name]
		slog.Warn("profile value outside recommended range", "field", name, "min", bounds.Min, "max", bounds.Max)
	}

	if *jsonOut {
		return printJSON(profile)
	}
	fmt.Printf("state_size=%d action_count=%d learning_rate=%g discount_factor=%g exploration_rate=%g memory_size=%d batch_size=%d coordination_enabled=%t coordination_weight=%g out_of_bounds=%d\n",
		profile.StateSize,
		profile.ActionCount,
		profile.LearningRate,
		profile.DiscountFactor,
		profile.ExplorationRate,
		profile.MemorySize,
		profile.BatchSize,
		profile.CoordinationEnabled,
		profile.CoordinationWeight,
		len(outOfBounds),
	)
	return nil
}

func formatSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

func printJSON(value any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: survivorctl <init|register|models|evaluate|compare|compare-versions|reports|reward|actions|encode|decode|profile> [flags]", msg)
}
