package practical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paca/jungsi/backend/internal/contracts"
)

func jumpTable() []contracts.PracticalScoreRecord {
	// 제자리멀리뛰기: 기록이 길수록 높은 배점
	return []contracts.PracticalScoreRecord{
		{Event: "제자리멀리뛰기", Gender: "남", Record: 280, Score: 100},
		{Event: "제자리멀리뛰기", Gender: "남", Record: 270, Score: 95},
		{Event: "제자리멀리뛰기", Gender: "남", Record: 260, Score: 90},
		{Event: "제자리멀리뛰기", Gender: "여", Record: 230, Score: 100},
		{Event: "제자리멀리뛰기", Gender: "여", Record: 220, Score: 95},
	}
}

func sprintTable() []contracts.PracticalScoreRecord {
	// 100m: 기록이 짧을수록 높은 배점
	return []contracts.PracticalScoreRecord{
		{Event: "100m", Gender: "공통", Record: 11.5, Score: 100},
		{Event: "100m", Gender: "공통", Record: 12.0, Score: 95},
		{Event: "100m", Gender: "공통", Record: 12.5, Score: 90},
	}
}

func TestEventRules(t *testing.T) {
	t.Run("성별 필터", func(t *testing.T) {
		rules := EventRules(jumpTable(), "제자리멀리뛰기", "여")
		require.Len(t, rules, 2)
		for _, r := range rules {
			assert.Equal(t, "여", r.Gender)
		}
	})

	t.Run("성별 행이 없으면 공통으로 폴백", func(t *testing.T) {
		rules := EventRules(sprintTable(), "100m", "남")
		assert.Len(t, rules, 3)
	})

	t.Run("없는 종목", func(t *testing.T) {
		assert.Empty(t, EventRules(jumpTable(), "턱걸이", "남"))
	})
}

func TestLookupScore(t *testing.T) {
	t.Run("높을수록 좋은 종목", func(t *testing.T) {
		rules := EventRules(jumpTable(), "제자리멀리뛰기", "남")

		score, ok := LookupScore(rules, 285)
		require.True(t, ok)
		assert.Equal(t, 100.0, score)

		score, ok = LookupScore(rules, 275)
		require.True(t, ok)
		assert.Equal(t, 95.0, score)

		// 구간점 정확히 일치
		score, ok = LookupScore(rules, 270)
		require.True(t, ok)
		assert.Equal(t, 95.0, score)

		_, ok = LookupScore(rules, 250)
		assert.False(t, ok, "최저 구간 미만은 미달")
	})

	t.Run("낮을수록 좋은 종목", func(t *testing.T) {
		rules := EventRules(sprintTable(), "100m", "공통")

		score, ok := LookupScore(rules, 11.3)
		require.True(t, ok)
		assert.Equal(t, 100.0, score)

		score, ok = LookupScore(rules, 11.8)
		require.True(t, ok)
		assert.Equal(t, 95.0, score)

		_, ok = LookupScore(rules, 13.0)
		assert.False(t, ok)
	})

	t.Run("빈 표", func(t *testing.T) {
		_, ok := LookupScore(nil, 100)
		assert.False(t, ok)
	})

	t.Run("숫자 아닌 기록 행은 건너뜀", func(t *testing.T) {
		rules := []contracts.PracticalScoreRecord{
			{Event: "수영", Gender: "공통", Record: "통과", Score: 50},
			{Event: "수영", Gender: "공통", Record: 100, Score: 100},
		}
		score, ok := LookupScore(rules, 120)
		require.True(t, ok)
		assert.Equal(t, 100.0, score)
	})
}

func TestConvertGradeToScore(t *testing.T) {
	rules := []contracts.PracticalScoreRecord{
		{Event: "수영", Gender: "공통", Record: "통과", Score: 100},
		{Event: "수영", Gender: "공통", Record: "실패", Score: 0},
	}

	score, ok := ConvertGradeToScore(rules, "통과")
	require.True(t, ok)
	assert.Equal(t, 100.0, score)

	_, ok = ConvertGradeToScore(rules, "기권")
	assert.False(t, ok)
}

func TestFindMaxMinScore(t *testing.T) {
	rules := EventRules(jumpTable(), "제자리멀리뛰기", "남")
	assert.Equal(t, 100.0, FindMaxScore(rules))
	assert.Equal(t, 90.0, FindMinScore(rules))
	assert.Equal(t, 0.0, FindMaxScore(nil))
	assert.Equal(t, 0.0, FindMinScore(nil))
}

func TestBuildScoreList(t *testing.T) {
	cuts := BuildScoreList(EventRules(jumpTable(), "제자리멀리뛰기", "남"))
	require.Len(t, cuts, 3)
	assert.Equal(t, 100.0, cuts[0].Score)
	assert.Equal(t, 90.0, cuts[2].Score)
}
