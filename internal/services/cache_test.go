package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/mindmentor-backend/internal/repos"
	"github.com/yungbote/mindmentor-backend/internal/types"
)

func newCacheFixture(t *testing.T, cfg CacheConfig) (CacheService, repos.LLMCacheRepo) {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger()
	repo := repos.NewLLMCacheRepo(db, log)
	return NewCacheService(log, repo, cfg), repo
}

func countingGenerator(content string) (GenerateFunc, *int) {
	calls := 0
	fn := func(ctx context.Context) (string, error) {
		calls++
		return content, nil
	}
	return fn, &calls
}

func TestCacheService_MissThenHit(t *testing.T) {
	svc, _ := newCacheFixture(t, CacheConfig{Enabled: true, TTLDays: 7})
	gen, calls := countingGenerator("lesson body")
	req := CacheRequest{
		PromptTemplate: "lesson {topic}",
		Params:         map[string]interface{}{"topic": "Optics"},
		Model:          ModelFlash,
		ContentType:    "lesson",
	}

	content, cached, err := svc.GetOrGenerate(context.Background(), req, gen)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if cached || content != "lesson body" {
		t.Fatalf("expected fresh generation, got cached=%v content=%q", cached, content)
	}

	content, cached, err = svc.GetOrGenerate(context.Background(), req, gen)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if !cached || content != "lesson body" {
		t.Fatalf("expected cache hit, got cached=%v content=%q", cached, content)
	}
	if *calls != 1 {
		t.Fatalf("generator ran %d times, want 1", *calls)
	}
}

func TestCacheService_HitIncrementsAccessCount(t *testing.T) {
	svc, repo := newCacheFixture(t, CacheConfig{Enabled: true, TTLDays: 7})
	gen, _ := countingGenerator("content")
	req := CacheRequest{PromptTemplate: "t", Params: nil, Model: ModelFlash}

	for i := 0; i < 3; i++ {
		if _, _, err := svc.GetOrGenerate(context.Background(), req, gen); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}

	entry, err := repo.GetByKey(context.Background(), nil, DeriveCacheKey("t", nil, ModelFlash))
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if entry == nil {
		t.Fatalf("entry missing after writes")
	}
	if entry.AccessCount != 3 {
		t.Fatalf("access count = %d, want 3 (1 insert + 2 hits)", entry.AccessCount)
	}
}

func TestCacheService_DisabledAlwaysGenerates(t *testing.T) {
	svc, repo := newCacheFixture(t, CacheConfig{Enabled: false, TTLDays: 7})
	gen, calls := countingGenerator("content")
	req := CacheRequest{PromptTemplate: "t", Model: ModelFlash}

	for i := 0; i < 2; i++ {
		_, cached, err := svc.GetOrGenerate(context.Background(), req, gen)
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if cached {
			t.Fatalf("call %d: unexpected cache hit with cache disabled", i)
		}
	}
	if *calls != 2 {
		t.Fatalf("generator ran %d times, want 2", *calls)
	}

	entry, err := repo.GetByKey(context.Background(), nil, DeriveCacheKey("t", nil, ModelFlash))
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if entry != nil {
		t.Fatalf("disabled cache should not persist entries")
	}
}

func TestCacheService_ForceRefreshRegeneratesButKeepsStoredEntry(t *testing.T) {
	svc, repo := newCacheFixture(t, CacheConfig{Enabled: true, TTLDays: 7})
	req := CacheRequest{PromptTemplate: "t", Model: ModelFlash}

	genOld, _ := countingGenerator("old content")
	if _, _, err := svc.GetOrGenerate(context.Background(), req, genOld); err != nil {
		t.Fatalf("seed call: %v", err)
	}

	refreshReq := req
	refreshReq.ForceRefresh = true
	genNew, calls := countingGenerator("new content")
	content, cached, err := svc.GetOrGenerate(context.Background(), refreshReq, genNew)
	if err != nil {
		t.Fatalf("refresh call: %v", err)
	}
	if cached || content != "new content" || *calls != 1 {
		t.Fatalf("force refresh did not regenerate: cached=%v content=%q calls=%d", cached, content, *calls)
	}

	// First writer wins at the store: the refreshed content goes to the
	// caller only, the existing fingerprint row is untouched.
	entry, err := repo.GetByKey(context.Background(), nil, DeriveCacheKey("t", nil, ModelFlash))
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if entry == nil || entry.ResponseContent != "old content" {
		t.Fatalf("stored entry = %+v, want the seeded content kept", entry)
	}
}

func TestCacheService_ExpiredEntryRegenerates(t *testing.T) {
	svc, repo := newCacheFixture(t, CacheConfig{Enabled: true, TTLDays: 7})
	req := CacheRequest{PromptTemplate: "t", Model: ModelFlash}
	key := DeriveCacheKey("t", nil, ModelFlash)

	stale := time.Now().UTC().AddDate(0, 0, -8)
	_, err := repo.Insert(context.Background(), nil, &types.LLMCacheEntry{
		CacheKey:        key,
		ModelUsed:       ModelFlash,
		PromptTemplate:  "t",
		ResponseContent: "stale content",
		CreatedAt:       stale,
		LastAccessed:    stale,
		AccessCount:     1,
	})
	if err != nil {
		t.Fatalf("seed stale entry: %v", err)
	}

	gen, calls := countingGenerator("fresh content")
	content, cached, err := svc.GetOrGenerate(context.Background(), req, gen)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if cached || content != "fresh content" || *calls != 1 {
		t.Fatalf("expired entry should regenerate: cached=%v content=%q calls=%d", cached, content, *calls)
	}
}

func TestCacheService_GenerationErrorSurfacesAndNothingStored(t *testing.T) {
	svc, repo := newCacheFixture(t, CacheConfig{Enabled: true, TTLDays: 7})
	boom := errors.New("model unavailable")
	gen := func(ctx context.Context) (string, error) { return "", boom }

	_, _, err := svc.GetOrGenerate(context.Background(), CacheRequest{PromptTemplate: "t", Model: ModelFlash}, gen)
	if err == nil || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped generation error, got %v", err)
	}

	entry, err := repo.GetByKey(context.Background(), nil, DeriveCacheKey("t", nil, ModelFlash))
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if entry != nil {
		t.Fatalf("failed generation must not be cached")
	}
}

func TestLLMCacheRepo_InsertConflictReturnsSurvivor(t *testing.T) {
	db := newTestDB(t)
	repo := repos.NewLLMCacheRepo(db, newTestLogger())
	now := time.Now().UTC()

	first, err := repo.Insert(context.Background(), nil, &types.LLMCacheEntry{
		CacheKey:        "same-key",
		ResponseContent: "first",
		CreatedAt:       now,
		LastAccessed:    now,
		AccessCount:     1,
	})
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}

	second, err := repo.Insert(context.Background(), nil, &types.LLMCacheEntry{
		CacheKey:        "same-key",
		ResponseContent: "second",
		CreatedAt:       now,
		LastAccessed:    now,
		AccessCount:     1,
	})
	if err != nil {
		t.Fatalf("conflicting insert: %v", err)
	}
	if second == nil || second.ResponseContent != "first" {
		t.Fatalf("conflicting insert should yield the surviving row, got %+v", second)
	}
	if second.ID != first.ID {
		t.Fatalf("expected surviving row id %v, got %v", first.ID, second.ID)
	}
}

func TestCacheService_ClearOldCacheRemovesInactiveOnly(t *testing.T) {
	svc, repo := newCacheFixture(t, CacheConfig{Enabled: true, TTLDays: 7})
	now := time.Now().UTC()
	old := now.AddDate(0, 0, -45)

	for _, row := range []*types.LLMCacheEntry{
		{CacheKey: "active", ResponseContent: "a", CreatedAt: now, LastAccessed: now, AccessCount: 1},
		{CacheKey: "inactive", ResponseContent: "b", CreatedAt: old, LastAccessed: old, AccessCount: 1},
	} {
		if _, err := repo.Insert(context.Background(), nil, row); err != nil {
			t.Fatalf("seed %s: %v", row.CacheKey, err)
		}
	}

	deleted, err := svc.ClearOldCache(context.Background(), 30)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted = %d, want 1", deleted)
	}

	remaining, err := repo.GetByKey(context.Background(), nil, "active")
	if err != nil || remaining == nil {
		t.Fatalf("active entry should survive eviction (err=%v)", err)
	}
}

func TestCacheService_Stats(t *testing.T) {
	svc, _ := newCacheFixture(t, CacheConfig{Enabled: true, TTLDays: 7})
	reqA := CacheRequest{PromptTemplate: "a", Model: ModelFlash, ContentType: "lesson"}
	reqB := CacheRequest{PromptTemplate: "b", Model: ModelPro, ContentType: "quiz"}
	gen, _ := countingGenerator("content")

	// a: 1 insert + 2 hits; b: 1 insert.
	for i := 0; i < 3; i++ {
		if _, _, err := svc.GetOrGenerate(context.Background(), reqA, gen); err != nil {
			t.Fatalf("reqA call %d: %v", i, err)
		}
	}
	if _, _, err := svc.GetOrGenerate(context.Background(), reqB, gen); err != nil {
		t.Fatalf("reqB call: %v", err)
	}

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalEntries != 2 {
		t.Fatalf("total entries = %d, want 2", stats.TotalEntries)
	}
	if stats.TotalAccesses != 4 {
		t.Fatalf("total accesses = %d, want 4", stats.TotalAccesses)
	}
	if stats.AvgAccessesPerEntry != 2 {
		t.Fatalf("avg accesses = %v, want 2", stats.AvgAccessesPerEntry)
	}
	// 2 estimated hits out of 4 accesses.
	if stats.EstimatedHitRatePercent != 50 {
		t.Fatalf("hit rate = %v, want 50", stats.EstimatedHitRatePercent)
	}
	if len(stats.ByModel) != 2 {
		t.Fatalf("by-model groups = %d, want 2", len(stats.ByModel))
	}
}
