package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"survivorrl/internal/model"
)

func testModel(name string, version int) model.ModelMetadata {
	return model.ModelMetadata{
		VersionedRecord:  model.CurrentVersion(),
		Name:             name,
		Path:             "models/" + name + ".zip",
		Version:          version,
		CreatedAt:        model.NewTimestamp(time.Date(2026, 3, 1, 12, version, 0, 0, time.UTC)),
		FileSize:         int64(1024 * version),
		RegistrationTime: float64(version),
		Annotations:      model.Annotations{"seed": "7"},
	}
}

func testEvaluation(name string, version int, rewards ...float64) model.EvaluationResult {
	return model.EvaluationResult{
		VersionedRecord: model.CurrentVersion(),
		ModelName:       name,
		ModelVersion:    version,
		Timestamp:       model.NewTimestamp(time.Date(2026, 3, 1, 13, 0, version, 0, time.UTC)),
		EpisodeCount:    len(rewards),
		Rewards:         rewards,
	}
}

// exerciseStore runs the behaviour shared by every Store implementation.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	for _, meta := range []model.ModelMetadata{testModel("stalker", 1), testModel("hunter", 2), testModel("hunter", 1)} {
		if err := store.SaveModel(ctx, meta); err != nil {
			t.Fatalf("save model %s v%d: %v", meta.Name, meta.Version, err)
		}
	}
	if err := store.SaveModel(ctx, testModel("hunter", 2)); !errors.Is(err, ErrDuplicateVersion) {
		t.Fatalf("expected duplicate version error, got %v", err)
	}

	names, err := store.ListModelNames(ctx)
	if err != nil {
		t.Fatalf("list model names: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"hunter", "stalker"}) {
		t.Fatalf("unexpected model names: %v", names)
	}

	versions, err := store.ListModelVersions(ctx, "hunter")
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(versions) != 2 || versions[0].Version != 1 || versions[1].Version != 2 {
		t.Fatalf("unexpected versions: %+v", versions)
	}

	loaded, ok, err := store.GetModel(ctx, "hunter", 2)
	if err != nil {
		t.Fatalf("get model: %v", err)
	}
	if !ok {
		t.Fatal("expected hunter v2")
	}
	if !reflect.DeepEqual(loaded, testModel("hunter", 2)) {
		t.Fatalf("unexpected model loaded: %+v", loaded)
	}
	loaded.Annotations["seed"] = "changed"
	again, _, _ := store.GetModel(ctx, "hunter", 2)
	if again.Annotations["seed"] != "7" {
		t.Fatal("expected store to own model annotations")
	}

	if _, ok, err := store.GetModel(ctx, "hunter", 9); err != nil || ok {
		t.Fatalf("expected missing version, got ok=%v err=%v", ok, err)
	}
	empty, err := store.ListModelVersions(ctx, "ghost")
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected no versions for unknown model, got %v err=%v", empty, err)
	}

	for _, result := range []model.EvaluationResult{
		testEvaluation("hunter", 1, 1, 2),
		testEvaluation("hunter", 2, 3, 4),
		testEvaluation("stalker", 1, 5),
	} {
		if err := store.SaveEvaluation(ctx, result); err != nil {
			t.Fatalf("save evaluation: %v", err)
		}
	}
	evals, err := store.ListEvaluations(ctx, "hunter")
	if err != nil {
		t.Fatalf("list evaluations: %v", err)
	}
	if len(evals) != 2 || evals[0].ModelVersion != 1 || evals[1].ModelVersion != 2 {
		t.Fatalf("unexpected evaluations: %+v", evals)
	}
	if !reflect.DeepEqual(evals[1].Rewards, []float64{3, 4}) {
		t.Fatalf("unexpected rewards: %v", evals[1].Rewards)
	}

	latest, ok, err := LatestEvaluation(ctx, store, "hunter", 0)
	if err != nil || !ok || latest.ModelVersion != 2 {
		t.Fatalf("unexpected latest evaluation: %+v ok=%v err=%v", latest, ok, err)
	}
	pinned, ok, err := LatestEvaluation(ctx, store, "hunter", 1)
	if err != nil || !ok || pinned.ModelVersion != 1 {
		t.Fatalf("unexpected pinned evaluation: %+v ok=%v err=%v", pinned, ok, err)
	}
	if _, ok, err := LatestEvaluation(ctx, store, "ghost", 0); err != nil || ok {
		t.Fatalf("expected no evaluation for ghost, got ok=%v err=%v", ok, err)
	}

	comparison := model.ModelComparison{
		VersionedRecord: model.CurrentVersion(),
		Timestamp:       model.NewTimestamp(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)),
		ModelNames:      []string{"hunter", "stalker"},
		Results: map[string]model.EvaluationResult{
			"hunter":  testEvaluation("hunter", 2, 3, 4),
			"stalker": testEvaluation("stalker", 1, 5),
		},
		Ranking:     []string{"stalker", "hunter"},
		Annotations: model.Annotations{},
	}
	firstID, err := store.SaveComparison(ctx, comparison)
	if err != nil {
		t.Fatalf("save comparison: %v", err)
	}
	secondID, err := store.SaveComparison(ctx, comparison)
	if err != nil {
		t.Fatalf("save second comparison: %v", err)
	}
	if firstID == "" || firstID == secondID {
		t.Fatalf("expected distinct comparison ids, got %q and %q", firstID, secondID)
	}

	stored, ok, err := store.GetComparison(ctx, firstID)
	if err != nil || !ok {
		t.Fatalf("get comparison: ok=%v err=%v", ok, err)
	}
	if stored.ID != firstID || !reflect.DeepEqual(stored.Ranking, comparison.Ranking) {
		t.Fatalf("unexpected comparison: %+v", stored)
	}
	if _, ok, err := store.GetComparison(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing comparison, got ok=%v err=%v", ok, err)
	}

	ids, err := store.ListComparisonIDs(ctx)
	if err != nil {
		t.Fatalf("list comparison ids: %v", err)
	}
	if !reflect.DeepEqual(ids, []string{firstID, secondID}) {
		t.Fatalf("unexpected comparison ids: %v", ids)
	}
}
