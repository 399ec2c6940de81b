package calcutil

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		fallback float64
		want     float64
	}{
		{"float64", 3.5, 0, 3.5},
		{"int", 7, 0, 7},
		{"숫자 문자열", "131.5", 0, 131.5},
		{"공백 포함 문자열", "  98 ", 0, 98},
		{"json.Number", json.Number("71.2"), 0, 71.2},
		{"bool true", true, 0, 1},
		{"bool false", false, 5, 0},
		{"nil", nil, 9, 9},
		{"깨진 문자열", "abc", 9, 9},
		{"빈 문자열", "", 9, 9},
		{"NaN", math.NaN(), 9, 9},
		{"Inf", math.Inf(1), 9, 9},
		{"맵", map[string]interface{}{}, 9, 9},
		{"슬라이스", []interface{}{1}, 9, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeNumber(tt.input, tt.fallback))
		})
	}
}

func TestSafeInt(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		fallback int
		want     int
	}{
		{"int", 3, 0, 3},
		{"float64 내림", 2.9, 0, 2},
		{"숫자 문자열", "2", 0, 2},
		{"단위 붙은 문자열", "2개", 0, 2},
		{"음수 문자열", "-3", 0, -3},
		{"숫자 없는 문자열", "개", 7, 7},
		{"nil", nil, 7, 7},
		{"NaN", math.NaN(), 7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeInt(tt.input, tt.fallback))
		})
	}
}

func TestSafeString(t *testing.T) {
	assert.Equal(t, "표준점수", SafeString("표준점수", ""))
	assert.Equal(t, "131.5", SafeString(131.5, ""))
	assert.Equal(t, "7", SafeString(7, ""))
	assert.Equal(t, "true", SafeString(true, ""))
	assert.Equal(t, "기본", SafeString(nil, "기본"))
	assert.Equal(t, `{"a":1}`, SafeString(map[string]interface{}{"a": 1}, ""))
}

func TestSafeArray(t *testing.T) {
	arr := []interface{}{1, 2}
	assert.Equal(t, arr, SafeArray(arr, nil))
	assert.Nil(t, SafeArray("not array", nil))
	assert.Equal(t, []interface{}{}, SafeArray(nil, []interface{}{}))
}

func TestSafeParse(t *testing.T) {
	t.Run("JSON 문자열", func(t *testing.T) {
		got := SafeParse(`{"총점": 1000}`, nil)
		m, ok := got.(map[string]interface{})
		assert.True(t, ok)
		assert.Equal(t, 1000.0, m["총점"])
	})

	t.Run("이미 파싱된 객체는 통과", func(t *testing.T) {
		obj := map[string]interface{}{"k": "v"}
		assert.Equal(t, obj, SafeParse(obj, nil))
	})

	t.Run("깨진 JSON은 폴백", func(t *testing.T) {
		fallback := map[string]interface{}{}
		assert.Equal(t, fallback, SafeParse("{broken", fallback))
	})

	t.Run("빈 문자열과 nil", func(t *testing.T) {
		assert.Nil(t, SafeParse("", nil))
		assert.Nil(t, SafeParse(nil, nil))
	})
}

func TestDecodeConfig(t *testing.T) {
	type cfg struct {
		Take int `json:"take"`
	}

	t.Run("문자열", func(t *testing.T) {
		var c cfg
		assert.True(t, DecodeConfig(`{"take": 2}`, &c))
		assert.Equal(t, 2, c.Take)
	})

	t.Run("파싱된 맵 재인코딩", func(t *testing.T) {
		var c cfg
		assert.True(t, DecodeConfig(map[string]interface{}{"take": 3}, &c))
		assert.Equal(t, 3, c.Take)
	})

	t.Run("실패 케이스", func(t *testing.T) {
		var c cfg
		assert.False(t, DecodeConfig(nil, &c))
		assert.False(t, DecodeConfig("", &c))
		assert.False(t, DecodeConfig("{broken", &c))
	})
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, Round2(1.234))
	assert.Equal(t, 1.24, Round2(1.235))
	assert.Equal(t, -1.24, Round2(-1.235))
	assert.Equal(t, 1000.0, Round2(1000))
}
