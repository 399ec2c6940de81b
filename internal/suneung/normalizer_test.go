package suneung

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paca/jungsi/backend/internal/contracts"
)

func TestPickByType(t *testing.T) {
	row := &contracts.SubjectScore{Std: 131, Percentile: 93}

	assert.Equal(t, 131.0, PickByType(row, contracts.ScoreTypeStandard))
	assert.Equal(t, 131.0, PickByType(row, contracts.ScoreTypeConverted))
	assert.Equal(t, 93.0, PickByType(row, contracts.ScoreTypePercent))
	assert.Equal(t, 93.0, PickByType(row, ""))
	assert.Equal(t, 0.0, PickByType(nil, contracts.ScoreTypeStandard))
}

func TestResolveTotal(t *testing.T) {
	assert.Equal(t, 1000.0, ResolveTotal(nil))
	assert.Equal(t, 1000.0, ResolveTotal(&contracts.FormulaData{}))
	assert.Equal(t, 700.0, ResolveTotal(&contracts.FormulaData{TotalScore: 700}))
	assert.Equal(t, 1000.0, ResolveTotal(&contracts.FormulaData{TotalScore: -5}))
}

func TestDetectEnglishAsBonus(t *testing.T) {
	tests := []struct {
		name    string
		formula *contracts.FormulaData
		want    bool
	}{
		{"영어처리에 가산점", &contracts.FormulaData{EnglishHandling: "등급별 가산점 부여"}, true},
		{"영어비고에 감점", &contracts.FormulaData{EnglishRemark: "3등급부터 감점"}, true},
		{"비율 반영", &contracts.FormulaData{EnglishRatio: 25}, false},
		{
			"비율 0 + 등급표 존재",
			&contracts.FormulaData{EnglishRatio: 0, EnglishScores: map[string]interface{}{"1": 100.0}},
			true,
		},
		{
			"문자열 설정 컬럼의 가감점 언급",
			&contracts.FormulaData{ScoreConfig: `{"비고":"영어 등급별 가감점 적용"}`, EnglishRatio: 20},
			true,
		},
		{"빈 설정", &contracts.FormulaData{}, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectEnglishAsBonus(tt.formula))
		})
	}
}

func TestIsSubjectUsedInRules(t *testing.T) {
	rules := []contracts.SelectionRule{
		{Type: contracts.SelectTopK, From: []string{"국어", "수학"}, Take: 1},
	}

	assert.True(t, IsSubjectUsedInRules("국어", rules))
	assert.False(t, IsSubjectUsedInRules("영어", rules))
	assert.False(t, IsSubjectUsedInRules("국어", nil))
}

func TestCalcInquiryRepresentative(t *testing.T) {
	rows := []contracts.SubjectScore{
		{Name: "탐구", Subject: "생활과윤리", Std: 70, Percentile: 98},
		{Name: "탐구", Subject: "사회문화", Std: 68, Percentile: 96},
	}

	t.Run("상위 1과목", func(t *testing.T) {
		got := CalcInquiryRepresentative(rows, contracts.ScoreTypePercent, 1)
		assert.Equal(t, 98.0, got.Rep)
		require.Len(t, got.Picked, 1)
		assert.Equal(t, "생활과윤리", got.Picked[0].Subject)
		assert.Len(t, got.Sorted, 2)
	})

	t.Run("2과목 평균", func(t *testing.T) {
		got := CalcInquiryRepresentative(rows, contracts.ScoreTypePercent, 2)
		assert.Equal(t, 97.0, got.Rep)
		assert.Len(t, got.Picked, 2)
	})

	t.Run("표준점수 기준 정렬", func(t *testing.T) {
		got := CalcInquiryRepresentative(rows, contracts.ScoreTypeStandard, 1)
		assert.Equal(t, 70.0, got.Rep)
	})

	t.Run("과목 수보다 큰 count는 전체 평균", func(t *testing.T) {
		got := CalcInquiryRepresentative(rows, contracts.ScoreTypePercent, 5)
		assert.Equal(t, 97.0, got.Rep)
	})

	t.Run("count 0은 1로 보정", func(t *testing.T) {
		got := CalcInquiryRepresentative(rows, contracts.ScoreTypePercent, 0)
		assert.Equal(t, 98.0, got.Rep)
	})

	t.Run("빈 입력", func(t *testing.T) {
		got := CalcInquiryRepresentative(nil, contracts.ScoreTypePercent, 2)
		assert.Equal(t, 0.0, got.Rep)
		assert.Empty(t, got.Picked)
	})
}

func TestResolveMaxScores(t *testing.T) {
	t.Run("백분위 기본값", func(t *testing.T) {
		got := ResolveMaxScores(nil, nil, nil, nil)
		assert.Equal(t, 100.0, got.Korean)
		assert.Equal(t, 100.0, got.Math)
		assert.Equal(t, 100.0, got.English)
		assert.Equal(t, 100.0, got.Inquiry)
	})

	t.Run("표준점수는 200", func(t *testing.T) {
		cfg := &contracts.ScoreConfig{
			KoreanMath: contracts.SubjectScoreConfig{Type: contracts.ScoreTypeStandard},
		}
		got := ResolveMaxScores(cfg, nil, nil, nil)
		assert.Equal(t, 200.0, got.Korean)
		assert.Equal(t, 200.0, got.Math)
	})

	t.Run("fixed_200", func(t *testing.T) {
		cfg := &contracts.ScoreConfig{
			KoreanMath: contracts.SubjectScoreConfig{MaxScoreMethod: "fixed_200"},
		}
		got := ResolveMaxScores(cfg, nil, nil, nil)
		assert.Equal(t, 200.0, got.Korean)
	})

	t.Run("highest_of_year는 선택과목명으로 조회", func(t *testing.T) {
		cfg := &contracts.ScoreConfig{
			KoreanMath: contracts.SubjectScoreConfig{
				Type:           contracts.ScoreTypeStandard,
				MaxScoreMethod: "highest_of_year",
			},
		}
		highest := contracts.HighestScoreMap{"화법과작문": 145, "미적분": 148}
		student := &contracts.StudentScores{Subjects: []contracts.SubjectScore{
			{Name: "국어", Subject: "화법과작문", Std: 131},
			{Name: "수학", Subject: "미적분", Std: 135},
		}}

		got := ResolveMaxScores(cfg, nil, highest, student)
		assert.Equal(t, 145.0, got.Korean)
		assert.Equal(t, 148.0, got.Math)
	})

	t.Run("영어 고정 만점", func(t *testing.T) {
		cfg := &contracts.ScoreConfig{
			English: contracts.EnglishScoreConfig{Type: "fixed_max_score", MaxScore: 200},
		}
		got := ResolveMaxScores(cfg, nil, nil, nil)
		assert.Equal(t, 200.0, got.English)
	})

	t.Run("영어 등급표에서 만점 추론", func(t *testing.T) {
		table := contracts.GradeTable{1: 140, 2: 136, 3: 132}
		got := ResolveMaxScores(nil, table, nil, nil)
		assert.Equal(t, 140.0, got.English)
	})
}

func TestReadConvertedStd(t *testing.T) {
	assert.Equal(t, 68.5, ReadConvertedStd(&contracts.SubjectScore{ConvertedStd: 68.5, Std: 70, Percentile: 98}))
	assert.Equal(t, 70.0, ReadConvertedStd(&contracts.SubjectScore{Std: 70, Percentile: 98}))
	assert.Equal(t, 98.0, ReadConvertedStd(&contracts.SubjectScore{Percentile: 98}))
	assert.Equal(t, 0.0, ReadConvertedStd(&contracts.SubjectScore{}))
	assert.Equal(t, 0.0, ReadConvertedStd(nil))
}

func TestGuessInquiryGroup(t *testing.T) {
	assert.Equal(t, "과탐", GuessInquiryGroup("물리학I"))
	assert.Equal(t, "과탐", GuessInquiryGroup("화학II"))
	assert.Equal(t, "과탐", GuessInquiryGroup("생명과학I"))
	assert.Equal(t, "과탐", GuessInquiryGroup("지구과학I"))
	assert.Equal(t, "사탐", GuessInquiryGroup("생활과윤리"))
	assert.Equal(t, "사탐", GuessInquiryGroup("사회문화"))
	assert.Equal(t, "사탐", GuessInquiryGroup(""))
}

func TestParseSelectionRules(t *testing.T) {
	t.Run("JSON 문자열 배열", func(t *testing.T) {
		raw := `[{"type":"select_topk","from":["국어","수학"],"take":1}]`
		rules := ParseSelectionRules(raw)
		require.Len(t, rules, 1)
		assert.Equal(t, contracts.SelectTopK, rules[0].Type)
		assert.Equal(t, 1, rules[0].Take)
	})

	t.Run("단일 객체도 허용", func(t *testing.T) {
		raw := map[string]interface{}{
			"type": "select_ranked_weights",
			"from": []interface{}{"국어", "수학", "탐구"},
			"weights": []interface{}{0.5, 0.3, 0.2},
		}
		rules := ParseSelectionRules(raw)
		require.Len(t, rules, 1)
		assert.Equal(t, contracts.SelectRankedWeights, rules[0].Type)
		assert.Equal(t, []float64{0.5, 0.3, 0.2}, rules[0].Weights)
	})

	t.Run("nil과 깨진 입력", func(t *testing.T) {
		assert.Nil(t, ParseSelectionRules(nil))
		assert.Nil(t, ParseSelectionRules("not json"))
	})
}
