// Package formula evaluates the department special formulas (특수공식):
// restricted arithmetic strings with {variable} placeholders, e.g.
//
//	"{kor_std} * {ratio_kor_norm} + {math_std} * {ratio_math_norm}"
//
// Variables are substituted from a numeric context first, then the
// remaining string is tokenized, parsed into an AST, and interpreted.
// No generic expression engine is involved, so a hostile formula can at
// worst fail to parse; it can never execute anything.
package formula

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// ErrDisallowedToken is returned when the substituted formula contains
// anything outside the arithmetic grammar (letters, semicolons, ...).
// 공식 템플릿 자체가 깨진 것이므로 데이터 문제와 달리 삼키지 않는다.
var ErrDisallowedToken = errors.New("특수공식에 허용되지 않은 토큰이 포함되어 있습니다.")

// SyntaxError describes a formula that passed the token whitelist but
// is not a well-formed arithmetic expression.
type SyntaxError struct {
	Msg string
	Pos int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("수식 구문 오류: %s (위치 %d)", e.Msg, e.Pos)
}

// variable placeholder: {identifier}, identifier = letters/digits/_,
// case-insensitive
var varPattern = regexp.MustCompile(`(?i)\{([a-z0-9_]+)\}`)

// Evaluate substitutes each {variable} with its context value
// (missing or non-finite values coerce to 0), appends one audit line
// per substitution to log, then parses and interprets the resulting
// arithmetic expression. A formula containing disallowed tokens or
// broken syntax returns an error; a non-finite result folds to 0.
func Evaluate(formulaText string, ctx map[string]float64, log *[]string) (float64, error) {
	replaced := varPattern.ReplaceAllStringFunc(formulaText, func(m string) string {
		name := varPattern.FindStringSubmatch(m)[1]
		v := ctx[name]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		formatted := strconv.FormatFloat(v, 'f', -1, 64)
		if log != nil {
			*log = append(*log, fmt.Sprintf("[특수공식 변수] %s = %s", name, formatted))
		}
		return formatted
	})

	root, err := parse(replaced)
	if err != nil {
		return 0, err
	}

	val := root.eval()
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, nil
	}
	return val, nil
}

// ValidationResult is the outcome of a dry-run formula check.
type ValidationResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// Validate dry-runs a formula with every variable substituted by the
// dummy value 1. Used by configuration tooling to reject broken
// formulas before they are stored.
func Validate(formulaText string) ValidationResult {
	if formulaText == "" {
		return ValidationResult{Valid: false, Error: "공식이 비어있습니다."}
	}

	replaced := varPattern.ReplaceAllString(formulaText, "1")

	root, err := parse(replaced)
	if err != nil {
		if errors.Is(err, ErrDisallowedToken) {
			return ValidationResult{Valid: false, Error: "허용되지 않은 토큰이 포함되어 있습니다."}
		}
		return ValidationResult{Valid: false, Error: err.Error()}
	}

	root.eval()
	return ValidationResult{Valid: true}
}

// ExtractVariables returns the deduplicated, order-preserving list of
// variable names a formula references. UI 자동완성과 검증 메시지용.
func ExtractVariables(formulaText string) []string {
	matches := varPattern.FindAllStringSubmatch(formulaText, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	var vars []string
	for _, m := range matches {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		vars = append(vars, name)
	}
	return vars
}
