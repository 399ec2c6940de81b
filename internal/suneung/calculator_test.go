package suneung

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paca/jungsi/backend/internal/contracts"
)

func TestCalculateScoreBasicRatio(t *testing.T) {
	t.Run("만점 학생은 총점 그대로", func(t *testing.T) {
		f := &contracts.FormulaData{
			TotalScore:   1000,
			SuneungRatio: 100,
			KoreanRatio:  25,
			MathRatio:    25,
			EnglishRatio: 25,
			InquiryRatio: 25,
			InquiryCount: 2,
		}
		student := &contracts.StudentScores{Subjects: []contracts.SubjectScore{
			{Name: "국어", Percentile: 100},
			{Name: "수학", Percentile: 100},
			{Name: "영어", Grade: 1},
			{Name: "탐구", Subject: "생활과윤리", Percentile: 100},
			{Name: "탐구", Subject: "사회문화", Percentile: 100},
		}}

		res, err := CalculateScore(f, student, nil)
		require.NoError(t, err)
		assert.Equal(t, 1000.0, res.TotalScore)
		assert.Equal(t, 250.0, res.Breakdown["국어"])
		assert.Equal(t, 250.0, res.Breakdown["수학"])
		assert.Equal(t, 250.0, res.Breakdown["영어"])
		assert.Equal(t, 250.0, res.Breakdown["탐구"])
		assert.NotEmpty(t, res.CalculationLog)
	})

	t.Run("비율과 수능 반영비율 반영", func(t *testing.T) {
		f := &contracts.FormulaData{
			TotalScore:   1000,
			SuneungRatio: 80,
			KoreanRatio:  50,
			MathRatio:    50,
			InquiryCount: 2,
		}
		student := &contracts.StudentScores{Subjects: []contracts.SubjectScore{
			{Name: "국어", Percentile: 90},
			{Name: "수학", Percentile: 80},
		}}

		res, err := CalculateScore(f, student, nil)
		require.NoError(t, err)
		// (0.9×0.5 + 0.8×0.5) × 1000 × 0.8 = 680
		assert.Equal(t, 680.0, res.TotalScore)
	})

	t.Run("한국사 가산점", func(t *testing.T) {
		f := &contracts.FormulaData{
			TotalScore:   1000,
			SuneungRatio: 100,
			KoreanRatio:  100,
		}
		student := &contracts.StudentScores{Subjects: []contracts.SubjectScore{
			{Name: "국어", Percentile: 100},
			{Name: "한국사", Grade: 4},
		}}

		res, err := CalculateScore(f, student, nil)
		require.NoError(t, err)
		// 국어 1000 + 한국사 4등급 기본표 9.8
		assert.Equal(t, 1009.8, res.TotalScore)
		assert.Equal(t, 9.8, res.Breakdown["한국사"])
	})

	t.Run("영어 가산점 방식", func(t *testing.T) {
		f := &contracts.FormulaData{
			TotalScore:      1000,
			SuneungRatio:    100,
			KoreanRatio:     100,
			EnglishHandling: "등급별 가산점",
			EnglishScores:   `{"1": 10, "2": 8, "3": 6}`,
		}
		student := &contracts.StudentScores{Subjects: []contracts.SubjectScore{
			{Name: "국어", Percentile: 100},
			{Name: "영어", Grade: 2},
		}}

		res, err := CalculateScore(f, student, nil)
		require.NoError(t, err)
		assert.Equal(t, 1008.0, res.TotalScore)
		assert.Equal(t, 8.0, res.Breakdown["영어"])
	})

	t.Run("가산점 규칙", func(t *testing.T) {
		f := &contracts.FormulaData{
			TotalScore:   1000,
			SuneungRatio: 100,
			KoreanRatio:  100,
			BonusRules: `[
				{"subject":"수학","metric":"grade","op":"lte","threshold":2,"points":20,"note":"수학 2등급 이내"},
				{"subject":"국어","metric":"percentile","op":"gte","threshold":99,"points":-5}
			]`,
		}
		student := &contracts.StudentScores{Subjects: []contracts.SubjectScore{
			{Name: "국어", Percentile: 100},
			{Name: "수학", Percentile: 90, Grade: 2},
		}}

		res, err := CalculateScore(f, student, nil)
		require.NoError(t, err)
		// 1000 + 20 - 5
		assert.Equal(t, 1015.0, res.TotalScore)
	})

	t.Run("빈 입력은 0점", func(t *testing.T) {
		res, err := CalculateScore(nil, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 0.0, res.TotalScore)
	})
}

func TestCalculateScoreSpecialFormula(t *testing.T) {
	t.Run("공식이 전체 계산을 소유", func(t *testing.T) {
		f := &contracts.FormulaData{
			TotalScore:     1000,
			SuneungRatio:   100,
			CalcType:       contracts.CalcTypeSpecial,
			SpecialFormula: "{kor_std} + {math_std} + {eng_grade_score}",
		}
		student := &contracts.StudentScores{Subjects: []contracts.SubjectScore{
			{Name: "국어", Std: 131},
			{Name: "수학", Std: 135},
			{Name: "영어", Grade: 1},
		}}

		res, err := CalculateScore(f, student, nil)
		require.NoError(t, err)
		assert.Equal(t, 366.0, res.TotalScore)

		// 변수 치환 내역이 감사 로그에 남는다
		var substitutions int
		for _, line := range res.CalculationLog {
			if strings.HasPrefix(line, "[특수공식 변수]") {
				substitutions++
			}
		}
		assert.GreaterOrEqual(t, substitutions, 3)
	})

	t.Run("깨진 공식은 에러로 표면화", func(t *testing.T) {
		f := &contracts.FormulaData{
			CalcType:       contracts.CalcTypeSpecial,
			SpecialFormula: "{kor_std} ++* bad(",
		}
		_, err := CalculateScore(f, &contracts.StudentScores{}, nil)
		assert.Error(t, err)
	})

	t.Run("로그 훅 호출", func(t *testing.T) {
		f := &contracts.FormulaData{
			CalcType:       contracts.CalcTypeSpecial,
			SpecialFormula: "{kor_std} * 2",
		}
		student := &contracts.StudentScores{Subjects: []contracts.SubjectScore{
			{Name: "국어", Std: 100},
		}}

		var hooked []string
		res, err := CalculateScoreWithConv(f, student, nil, func(line string) {
			hooked = append(hooked, line)
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, 200.0, res.TotalScore)
		assert.Equal(t, res.CalculationLog, hooked)
	})
}

func TestCalculateScoreSelectionRules(t *testing.T) {
	t.Run("상위 1과목 선택", func(t *testing.T) {
		f := &contracts.FormulaData{
			TotalScore:   1000,
			SuneungRatio: 100,
			SelectionRules: `[{"type":"select_topk","from":["국어","수학"],"take":1}]`,
		}
		student := &contracts.StudentScores{Subjects: []contracts.SubjectScore{
			{Name: "국어", Percentile: 90},
			{Name: "수학", Percentile: 96},
		}}

		res, err := CalculateScore(f, student, nil)
		require.NoError(t, err)
		// 수학 96% 하나만 반영
		assert.Equal(t, 960.0, res.TotalScore)
		assert.Equal(t, 960.0, res.Breakdown["수학"])
		assert.NotContains(t, res.Breakdown, "국어")
	})

	t.Run("상위 2과목 평균은 분해 합과 일치", func(t *testing.T) {
		f := &contracts.FormulaData{
			TotalScore:   1000,
			SuneungRatio: 100,
			SelectionRules: `[{"type":"select_topk","from":["국어","수학"],"take":2,"method":"평균"}]`,
		}
		student := &contracts.StudentScores{Subjects: []contracts.SubjectScore{
			{Name: "국어", Percentile: 90},
			{Name: "수학", Percentile: 96},
		}}

		res, err := CalculateScore(f, student, nil)
		require.NoError(t, err)
		// (0.90 + 0.96) / 2 = 0.93 → 930
		assert.Equal(t, 930.0, res.TotalScore)
		// 과목별 기여는 norm/2 기준이라 합이 총점과 같아야 함
		assert.Equal(t, 480.0, res.Breakdown["수학"])
		assert.Equal(t, 450.0, res.Breakdown["국어"])
		assert.Equal(t, res.TotalScore, res.Breakdown["수학"]+res.Breakdown["국어"])
	})

	t.Run("규칙 안 한국사는 학과 등급표 만점으로 정규화", func(t *testing.T) {
		f := &contracts.FormulaData{
			TotalScore:     1000,
			SuneungRatio:   100,
			HistoryScores:  `{"1": 20, "9": 2}`,
			SelectionRules: `[{"type":"select_topk","from":["국어","한국사"],"take":1}]`,
		}
		student := &contracts.StudentScores{Subjects: []contracts.SubjectScore{
			{Name: "국어", Percentile: 50},
			{Name: "한국사", Grade: 1},
		}}

		res, err := CalculateScore(f, student, nil)
		require.NoError(t, err)
		// 한국사 20/20 = 1.0이 국어 0.5를 제치고 선택 → 1000,
		// 비율 미지정이라 등급 가산점 20이 추가로 붙음
		assert.Equal(t, 1020.0, res.TotalScore)
		assert.Equal(t, 1020.0, res.Breakdown["한국사"])
	})

	t.Run("순위별 가중치", func(t *testing.T) {
		f := &contracts.FormulaData{
			TotalScore:   1000,
			SuneungRatio: 100,
			SelectionRules: `[{
				"type":"select_ranked_weights",
				"from":["국어","수학","탐구"],
				"weights":[0.5,0.3,0.2]
			}]`,
			InquiryCount: 2,
		}
		student := &contracts.StudentScores{Subjects: []contracts.SubjectScore{
			{Name: "국어", Percentile: 80},
			{Name: "수학", Percentile: 100},
			{Name: "탐구", Subject: "물리학I", Percentile: 90},
			{Name: "탐구", Subject: "화학I", Percentile: 90},
		}}

		res, err := CalculateScore(f, student, nil)
		require.NoError(t, err)
		// 1.0×0.5 + 0.9×0.3 + 0.8×0.2 = 0.93 → 930
		assert.Equal(t, 930.0, res.TotalScore)
	})

	t.Run("규칙 밖 영어는 별도 가산", func(t *testing.T) {
		f := &contracts.FormulaData{
			TotalScore:      1000,
			SuneungRatio:    100,
			EnglishHandling: "가산점",
			EnglishScores:   `{"1": 5}`,
			SelectionRules:  `[{"type":"select_topk","from":["국어","수학"],"take":1}]`,
		}
		student := &contracts.StudentScores{Subjects: []contracts.SubjectScore{
			{Name: "국어", Percentile: 100},
			{Name: "수학", Percentile: 90},
			{Name: "영어", Grade: 1},
		}}

		res, err := CalculateScore(f, student, nil)
		require.NoError(t, err)
		assert.Equal(t, 1005.0, res.TotalScore)
	})
}

func TestCalculateScoreWithConversionMap(t *testing.T) {
	f := &contracts.FormulaData{
		TotalScore:   1000,
		SuneungRatio: 100,
		InquiryRatio: 100,
		InquiryCount: 2,
		ScoreConfig:  `{"inquiry":{"type":"변환표준점수"}}`,
	}
	conv := &contracts.ConversionMap{
		Science: map[string]float64{"98": 72, "96": 70},
	}
	student := &contracts.StudentScores{Subjects: []contracts.SubjectScore{
		{Name: "탐구", Subject: "물리학I", Percentile: 98},
		{Name: "탐구", Subject: "지구과학I", Percentile: 96},
	}}

	res, err := CalculateScoreWithConv(f, student, conv, nil, nil)
	require.NoError(t, err)
	// 변표 적용 대표값 (72+70)/2 = 71 → 71/100 × 1000
	assert.Equal(t, 710.0, res.TotalScore)
}

func TestCalculateScoreDeterminism(t *testing.T) {
	f := &contracts.FormulaData{
		TotalScore:   1000,
		SuneungRatio: 100,
		KoreanRatio:  30,
		MathRatio:    30,
		EnglishRatio: 20,
		InquiryRatio: 20,
		InquiryCount: 2,
	}
	student := testStudent()

	first, err := CalculateScore(f, student, nil)
	require.NoError(t, err)
	second, err := CalculateScore(f, student, nil)
	require.NoError(t, err)

	assert.Equal(t, first.TotalScore, second.TotalScore)
	assert.Equal(t, first.Breakdown, second.Breakdown)
}
