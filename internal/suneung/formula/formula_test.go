package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	t.Run("기본 가중합", func(t *testing.T) {
		ctx := map[string]float64{"kor_std": 145, "math_std": 148}
		var log []string

		val, err := Evaluate("{kor_std} * 1 + {math_std} * 1", ctx, &log)
		require.NoError(t, err)
		assert.Equal(t, 293.0, val)
		require.Len(t, log, 2)
		assert.Equal(t, "[특수공식 변수] kor_std = 145", log[0])
		assert.Equal(t, "[특수공식 변수] math_std = 148", log[1])
	})

	t.Run("연산자 우선순위와 괄호", func(t *testing.T) {
		val, err := Evaluate("2 + 3 * 4", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 14.0, val)

		val, err = Evaluate("(2 + 3) * 4", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 20.0, val)
	})

	t.Run("단항 음수", func(t *testing.T) {
		val, err := Evaluate("-5 + 10", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 5.0, val)

		val, err = Evaluate("3 * -2", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, -6.0, val)
	})

	t.Run("미정의 변수는 0", func(t *testing.T) {
		var log []string
		val, err := Evaluate("{missing} + 7", map[string]float64{}, &log)
		require.NoError(t, err)
		assert.Equal(t, 7.0, val)
		require.Len(t, log, 1)
		assert.Equal(t, "[특수공식 변수] missing = 0", log[0])
	})

	t.Run("실전 비율 공식", func(t *testing.T) {
		ctx := map[string]float64{
			"kor_std":        131,
			"math_std":       135,
			"ratio_kor_norm": 0.4,
			"ratio_math_norm": 0.6,
		}
		val, err := Evaluate("({kor_std} * {ratio_kor_norm} + {math_std} * {ratio_math_norm}) * 10", ctx, nil)
		require.NoError(t, err)
		assert.InDelta(t, 1334.0, val, 1e-9)
	})

	t.Run("허용되지 않은 토큰", func(t *testing.T) {
		_, err := Evaluate("{x}; DROP TABLE", map[string]float64{"x": 1}, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDisallowedToken)
	})

	t.Run("구문 오류", func(t *testing.T) {
		_, err := Evaluate("1 + * 2", nil, nil)
		require.Error(t, err)
		var synErr *SyntaxError
		assert.ErrorAs(t, err, &synErr)
	})

	t.Run("빈 공식", func(t *testing.T) {
		_, err := Evaluate("", nil, nil)
		assert.Error(t, err)
	})

	t.Run("0으로 나누기는 0으로 접힘", func(t *testing.T) {
		val, err := Evaluate("10 / 0", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 0.0, val)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		valid   bool
		errMsg  string
	}{
		{"정상 공식", "{kor_std} * 0.4 + {math_std} * 0.6", true, ""},
		{"빈 공식", "", false, "공식이 비어있습니다."},
		{"세미콜론 주입", "{x}; DROP", false, "허용되지 않은 토큰이 포함되어 있습니다."},
		{"한글 토큰", "{kor_std} + 국어", false, "허용되지 않은 토큰이 포함되어 있습니다."},
		{"괄호 불일치", "({kor_std} + 1", false, ""},
		{"연산자만", "+ *", false, ""},
		{"숫자 하나", "42", true, ""},
		{"중첩 괄호", "((({a} + {b}) * 2) - 1) / 3", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.formula)
			assert.Equal(t, tt.valid, res.Valid)
			if tt.errMsg != "" {
				assert.Equal(t, tt.errMsg, res.Error)
			}
			if !tt.valid {
				assert.NotEmpty(t, res.Error)
			}
		})
	}
}

func TestValidatedFormulaNeverFailsToEvaluate(t *testing.T) {
	// 검증을 통과한 공식은 어떤 컨텍스트에서도 평가 에러가 없어야 함
	formulas := []string{
		"{kor_std} + {math_std}",
		"({inq_avg_pct} / 100) * {total} * ({suneung_ratio} / 100)",
		"{kor_std} * 1.2 - {hist_grade_score}",
		"-{eng_grade_score} + 100",
	}
	contexts := []map[string]float64{
		nil,
		{},
		{"kor_std": 145, "math_std": 122, "inq_avg_pct": 97, "total": 1000, "suneung_ratio": 80},
	}

	for _, f := range formulas {
		res := Validate(f)
		require.True(t, res.Valid, "formula %q should validate", f)
		for _, ctx := range contexts {
			_, err := Evaluate(f, ctx, nil)
			assert.NoError(t, err, "formula %q with ctx %v", f, ctx)
		}
	}
}

func TestExtractVariables(t *testing.T) {
	t.Run("중복 제거와 순서 유지", func(t *testing.T) {
		vars := ExtractVariables("{kor_std} * 2 + {math_std} + {kor_std}")
		assert.Equal(t, []string{"kor_std", "math_std"}, vars)
	})

	t.Run("변수 없음", func(t *testing.T) {
		assert.Nil(t, ExtractVariables("1 + 2"))
		assert.Nil(t, ExtractVariables(""))
	})

	t.Run("대소문자 혼용", func(t *testing.T) {
		vars := ExtractVariables("{Kor_Std} + {kor_std}")
		assert.Equal(t, []string{"Kor_Std", "kor_std"}, vars)
	})
}
