package store

import (
	"context"
	"time"

	"github.com/paca/jungsi/backend/internal/contracts"
	"github.com/paca/jungsi/backend/pkg/redis"
)

// CachedFormulaRepository wraps a FormulaRepository with Redis
// caching. 계산 API는 같은 학과 공식을 반복 조회하므로 조회 결과를
// 짧게 캐싱한다. Redis가 꺼져 있으면 매번 원본 저장소로 간다.
type CachedFormulaRepository struct {
	inner contracts.FormulaRepository
	cache *redis.Cache
	ttl   time.Duration
}

// NewCachedFormulaRepository wraps inner with caching. ttl governs the
// formula keys (FORMULA_CACHE_TTL); zero falls back to the standard
// medium TTL.
func NewCachedFormulaRepository(inner contracts.FormulaRepository, cache *redis.Cache, ttl time.Duration) *CachedFormulaRepository {
	if ttl <= 0 {
		ttl = redis.TTLMedium
	}
	return &CachedFormulaRepository{inner: inner, cache: cache, ttl: ttl}
}

// GetFormula returns the cached configuration when present.
func (r *CachedFormulaRepository) GetFormula(ctx context.Context, deptID int64, year int) (*contracts.FormulaData, error) {
	var f contracts.FormulaData
	err := r.cache.GetOrSet(ctx, redis.FormulaKey(deptID, year), &f, r.ttl, func() (interface{}, error) {
		return r.inner.GetFormula(ctx, deptID, year)
	})
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// GetPracticalFormula returns the cached practical configuration when
// present.
func (r *CachedFormulaRepository) GetPracticalFormula(ctx context.Context, deptID int64, year int) (*contracts.PracticalFormulaData, error) {
	var f contracts.PracticalFormulaData
	err := r.cache.GetOrSet(ctx, redis.PracticalKey(deptID, year), &f, r.ttl, func() (interface{}, error) {
		return r.inner.GetPracticalFormula(ctx, deptID, year)
	})
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// CopyYear passes through; the per-department keys of the target year
// expire on their own TTL.
func (r *CachedFormulaRepository) CopyYear(ctx context.Context, fromYear, toYear int) (int, error) {
	return r.inner.CopyYear(ctx, fromYear, toYear)
}

// CachedReferenceRepository wraps a ReferenceRepository with Redis
// caching. 최고표점은 연 단위 데이터라 하루짜리 캐시를 쓴다.
type CachedReferenceRepository struct {
	inner contracts.ReferenceRepository
	cache *redis.Cache
}

// NewCachedReferenceRepository wraps inner with caching.
func NewCachedReferenceRepository(inner contracts.ReferenceRepository, cache *redis.Cache) *CachedReferenceRepository {
	return &CachedReferenceRepository{inner: inner, cache: cache}
}

// GetHighestScores returns the cached year map when present.
func (r *CachedReferenceRepository) GetHighestScores(ctx context.Context, year int) (contracts.HighestScoreMap, error) {
	var m contracts.HighestScoreMap
	err := r.cache.GetOrSet(ctx, redis.HighestScoreKey(year), &m, redis.TTLDaily, func() (interface{}, error) {
		return r.inner.GetHighestScores(ctx, year)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// GetConversionMap returns the cached department table when present.
func (r *CachedReferenceRepository) GetConversionMap(ctx context.Context, deptID int64) (*contracts.ConversionMap, error) {
	var conv contracts.ConversionMap
	err := r.cache.GetOrSet(ctx, redis.ConversionKey(deptID), &conv, redis.TTLLong, func() (interface{}, error) {
		return r.inner.GetConversionMap(ctx, deptID)
	})
	if err != nil {
		return nil, err
	}
	return &conv, nil
}
