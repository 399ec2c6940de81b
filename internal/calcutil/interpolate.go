package calcutil

import (
	"sort"
	"strconv"
)

// CutPoint is one (percentile threshold, score) pair of a cut table.
type CutPoint struct {
	Percentile float64
	Score      float64
}

// InterpolateScore linearly interpolates a score for an arbitrary
// percentile over a cut table sorted descending by percentile.
// Percentiles at or above the highest threshold clamp to the top score;
// at or below the lowest they clamp to the bottom score. 외삽은 하지
// 않는다.
func InterpolateScore(table []CutPoint, percentile float64) float64 {
	if len(table) == 0 {
		return 0
	}

	if percentile >= table[0].Percentile {
		return table[0].Score
	}
	last := table[len(table)-1]
	if percentile <= last.Percentile {
		return last.Score
	}

	for i := 0; i < len(table)-1; i++ {
		hi, lo := table[i], table[i+1]
		if percentile == hi.Percentile {
			return hi.Score
		}
		if percentile < hi.Percentile && percentile > lo.Percentile {
			span := hi.Percentile - lo.Percentile
			if span == 0 {
				return hi.Score
			}
			frac := (percentile - lo.Percentile) / span
			return lo.Score + (hi.Score-lo.Score)*frac
		}
	}
	return last.Score
}

// MapPercentileToConverted resolves a converted standard score from a
// percentile-keyed table ({"98": 70.2, ...}). An exact percentile match
// returns the table value directly; otherwise the two nearest
// neighbors are interpolated.
func MapPercentileToConverted(table map[string]float64, percentile float64) float64 {
	if len(table) == 0 {
		return 0
	}

	// Exact match first: both integer and raw formatting are in use
	// upstream.
	for _, key := range []string{
		strconv.FormatFloat(percentile, 'f', -1, 64),
		strconv.Itoa(int(percentile)),
	} {
		if v, ok := table[key]; ok {
			return v
		}
	}

	points := make([]CutPoint, 0, len(table))
	for k, v := range table {
		p, err := strconv.ParseFloat(k, 64)
		if err != nil {
			continue
		}
		points = append(points, CutPoint{Percentile: p, Score: v})
	}
	if len(points) == 0 {
		return 0
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Percentile > points[j].Percentile
	})

	return InterpolateScore(points, percentile)
}

// National reference cuts. 부문별 등급 경계는 교육과정평가원 고시 기준
// 절대평가 구간이며 학과별 설정이 아님.
var (
	englishGradeCuts = []float64{90, 80, 70, 60, 50, 40, 30, 20}
	historyGradeCuts = []float64{40, 35, 30, 25, 20, 15, 10, 5}
)

// EnglishGrade maps a raw English score back to its 1..9 grade using
// the national absolute cut table. Display/verification helper, not a
// scoring path.
func EnglishGrade(rawScore float64) int {
	return gradeFromCuts(englishGradeCuts, rawScore)
}

// HistoryGrade maps a raw Korean-history score back to its 1..9 grade.
func HistoryGrade(rawScore float64) int {
	return gradeFromCuts(historyGradeCuts, rawScore)
}

func gradeFromCuts(cuts []float64, rawScore float64) int {
	for i, cut := range cuts {
		if rawScore >= cut {
			return i + 1
		}
	}
	return 9
}
