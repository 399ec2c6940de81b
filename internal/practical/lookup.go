// Package practical implements the physical-test (실기) scoring path:
// event score-table lookups, the named special rules, and the
// calculator that combines them with the department's below-minimum
// policy and ceiling. Like the 수능 engine it is pure computation, no
// I/O.
package practical

import (
	"sort"

	"github.com/paca/jungsi/backend/internal/calcutil"
	"github.com/paca/jungsi/backend/internal/contracts"
)

// EventRules filters a department's score table down to one event,
// preferring rows for the student's gender and falling back to 공통.
func EventRules(table []contracts.PracticalScoreRecord, event, gender string) []contracts.PracticalScoreRecord {
	var matched, common []contracts.PracticalScoreRecord
	for _, row := range table {
		if row.Event != event {
			continue
		}
		switch row.Gender {
		case gender:
			matched = append(matched, row)
		case contracts.GenderCommon:
			common = append(common, row)
		}
	}
	if len(matched) > 0 {
		return matched
	}
	return common
}

// EventCut is one numeric (record threshold, awarded score) pair.
type EventCut struct {
	Record float64
	Score  float64
}

// BuildScoreList extracts the numeric cut points of an event's rows,
// sorted descending by awarded score. Non-numeric records (통과/등급
// 표기) are skipped; they go through ConvertGradeToScore instead.
func BuildScoreList(rules []contracts.PracticalScoreRecord) []EventCut {
	cuts := make([]EventCut, 0, len(rules))
	for _, row := range rules {
		record, ok := numericRecord(row.Record)
		if !ok {
			continue
		}
		cuts = append(cuts, EventCut{
			Record: record,
			Score:  calcutil.SafeNumber(row.Score, 0),
		})
	}
	sort.SliceStable(cuts, func(i, j int) bool {
		return cuts[i].Score > cuts[j].Score
	})
	return cuts
}

func numericRecord(v interface{}) (float64, bool) {
	const sentinel = -1e18
	f := calcutil.SafeNumber(v, sentinel)
	if f == sentinel {
		return 0, false
	}
	return f, true
}

// LookupScore finds the awarded score for a recorded value: the first
// row, walking from the best score down, whose threshold the value
// satisfies. The satisfying direction is inferred from the table
// itself: when better scores carry higher thresholds the event is
// higher-is-better (멀리뛰기 등); when better scores carry lower
// thresholds it is lower-is-better (달리기 기록).
//
// The second return is false when the value satisfies no row (미달).
func LookupScore(rules []contracts.PracticalScoreRecord, value float64) (float64, bool) {
	cuts := BuildScoreList(rules)
	if len(cuts) == 0 {
		return 0, false
	}
	if len(cuts) == 1 {
		if value >= cuts[0].Record {
			return cuts[0].Score, true
		}
		return 0, false
	}

	higherIsBetter := cuts[0].Record >= cuts[len(cuts)-1].Record

	for _, cut := range cuts {
		if higherIsBetter && value >= cut.Record {
			return cut.Score, true
		}
		if !higherIsBetter && value <= cut.Record {
			return cut.Score, true
		}
	}
	return 0, false
}

// ConvertGradeToScore resolves non-numeric records (통과, A/B/C 등급
// 표기) by exact string match against the table.
func ConvertGradeToScore(rules []contracts.PracticalScoreRecord, recorded string) (float64, bool) {
	for _, row := range rules {
		if calcutil.SafeString(row.Record, "") == recorded {
			return calcutil.SafeNumber(row.Score, 0), true
		}
	}
	return 0, false
}

// FindMaxScore returns the best awarded score in an event's rows.
func FindMaxScore(rules []contracts.PracticalScoreRecord) float64 {
	max := 0.0
	for _, row := range rules {
		if s := calcutil.SafeNumber(row.Score, 0); s > max {
			max = s
		}
	}
	return max
}

// FindMinScore returns the lowest awarded score in an event's rows.
func FindMinScore(rules []contracts.PracticalScoreRecord) float64 {
	if len(rules) == 0 {
		return 0
	}
	min := calcutil.SafeNumber(rules[0].Score, 0)
	for _, row := range rules[1:] {
		if s := calcutil.SafeNumber(row.Score, 0); s < min {
			min = s
		}
	}
	return min
}
