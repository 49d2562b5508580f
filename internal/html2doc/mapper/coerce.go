package mapper

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/aisa-it/html2doc/internal/html2doc/doctree"
)

var decimalReg = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// coerceData приводит значение data-* атрибута к типу по его текстовому виду.
func coerceData(raw string) doctree.Value {
	switch raw {
	case "true":
		return doctree.Bool(true)
	case "false":
		return doctree.Bool(false)
	case "null", "undefined", "":
		return doctree.Bool(true)
	case "NaN":
		return doctree.Number(math.NaN())
	case "Infinity":
		return doctree.Number(math.Inf(1))
	case "-Infinity":
		return doctree.Number(math.Inf(-1))
	}

	trimmed := trimBlank(raw)
	if trimmed == "" {
		return doctree.Bool(true)
	}
	if f, ok := parseNumber(trimmed); ok {
		return doctree.Number(f)
	}
	return doctree.String(trimmed)
}

// parseNumber разбирает число по правилам приведения строки к числу в браузере:
// пробелы по краям игнорируются, пустая строка дает 0, поддерживаются 0x/0o/0b и Infinity.
func parseNumber(raw string) (float64, bool) {
	s := trimBlank(raw)
	if s == "" {
		return 0, true
	}

	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			if strings.ContainsAny(s[2:], "+-_") {
				return 0, false
			}
			u, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return 0, false
			}
			return float64(u), true
		}
	}

	if !decimalReg.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// при переполнении f уже равно ±Inf или 0
		if errors.Is(err, strconv.ErrRange) {
			return f, true
		}
		return 0, false
	}
	return f, true
}

// numberOrString число или исходная строка, если значение не приводится к числу
func numberOrString(raw string) doctree.Value {
	if f, ok := parseNumber(raw); ok {
		return doctree.Number(f)
	}
	return doctree.String(raw)
}

// numberList разбирает список чисел через запятую ("100,200").
func numberList(raw string) doctree.Value {
	parts := strings.Split(raw, ",")
	nums := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, ok := parseNumber(p)
		if !ok {
			return doctree.String(raw)
		}
		nums = append(nums, f)
	}
	return doctree.NumberList(nums...)
}

func isBlankRune(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

func trimBlank(s string) string {
	return strings.TrimFunc(s, isBlankRune)
}

func isBlank(s string) bool {
	return trimBlank(s) == ""
}
