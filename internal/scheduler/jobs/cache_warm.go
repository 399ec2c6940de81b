// Package jobs holds the concrete scheduled jobs.
package jobs

import (
	"context"
	"fmt"

	"github.com/paca/jungsi/backend/internal/contracts"
	"github.com/paca/jungsi/backend/pkg/logger"
	"github.com/paca/jungsi/backend/pkg/redis"
)

// HighestScoreWarmJob refreshes the cached subject highest-score table
// for the working year. 최고표점은 하루에 한 번이면 충분함.
type HighestScoreWarmJob struct {
	refs   contracts.ReferenceRepository
	cache  *redis.Cache
	year   int
	logger *logger.Logger
}

// NewHighestScoreWarmJob creates the highest-score warm job.
func NewHighestScoreWarmJob(refs contracts.ReferenceRepository, cache *redis.Cache, year int, log *logger.Logger) *HighestScoreWarmJob {
	return &HighestScoreWarmJob{refs: refs, cache: cache, year: year, logger: log}
}

func (j *HighestScoreWarmJob) Name() string { return "highest_score_warm" }

// Schedule runs 매일 새벽 5시.
func (j *HighestScoreWarmJob) Schedule() string { return "0 0 5 * * *" }

// Run loads the highest-score table from the database and overwrites
// the cache entry.
func (j *HighestScoreWarmJob) Run(ctx context.Context) error {
	highest, err := j.refs.GetHighestScores(ctx, j.year)
	if err != nil {
		return fmt.Errorf("failed to load highest scores: %w", err)
	}

	key := redis.HighestScoreKey(j.year)
	if err := j.cache.Set(ctx, key, highest, redis.TTLDaily); err != nil {
		return fmt.Errorf("failed to cache highest scores: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"year":     j.year,
		"subjects": len(highest),
	}).Info("최고표점 캐시 갱신")
	return nil
}

// ConversionWarmJob refreshes the cached 변환표준점수표 for every
// department of the working year.
type ConversionWarmJob struct {
	depts  contracts.DepartmentRepository
	refs   contracts.ReferenceRepository
	cache  *redis.Cache
	year   int
	logger *logger.Logger
}

// NewConversionWarmJob creates the conversion-table warm job.
func NewConversionWarmJob(
	depts contracts.DepartmentRepository,
	refs contracts.ReferenceRepository,
	cache *redis.Cache,
	year int,
	log *logger.Logger,
) *ConversionWarmJob {
	return &ConversionWarmJob{depts: depts, refs: refs, cache: cache, year: year, logger: log}
}

func (j *ConversionWarmJob) Name() string { return "conversion_warm" }

// Schedule runs 매일 새벽 5시 10분, after the highest-score warm.
func (j *ConversionWarmJob) Schedule() string { return "0 10 5 * * *" }

// Run walks every department and refreshes its conversion-table cache
// entry. Per-department failures are logged and skipped so one broken
// row does not abort the whole sweep.
func (j *ConversionWarmJob) Run(ctx context.Context) error {
	depts, err := j.depts.ListDepartments(ctx, j.year, 0)
	if err != nil {
		return fmt.Errorf("failed to list departments: %w", err)
	}

	warmed := 0
	for _, dept := range depts {
		conv, err := j.refs.GetConversionMap(ctx, dept.ID)
		if err != nil {
			j.logger.WithError(err).WithDept(dept.ID).Warn("변환표준점수표 조회 실패, 건너뜀")
			continue
		}
		if conv.Empty() {
			continue
		}

		key := redis.ConversionKey(dept.ID)
		if err := j.cache.Set(ctx, key, conv, redis.TTLLong); err != nil {
			j.logger.WithError(err).WithDept(dept.ID).Warn("변환표준점수표 캐시 실패, 건너뜀")
			continue
		}
		warmed++
	}

	j.logger.WithFields(map[string]interface{}{
		"year":        j.year,
		"departments": len(depts),
		"warmed":      warmed,
	}).Info("변환표준점수표 캐시 갱신")
	return nil
}
