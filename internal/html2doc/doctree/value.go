package doctree

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

type Kind uint8

const (
	KindString Kind = iota + 1
	KindBool
	KindNumber
	KindNumberList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindNumberList:
		return "number_list"
	}
	return "invalid"
}

// Value значение атрибута ноды. Хранит ровно один из вариантов, определяемый Kind.
// Нулевое значение невалидно и сериализуется как null.
type Value struct {
	kind Kind
	str  string
	b    bool
	num  float64
	list []float64
}

func String(s string) Value { return Value{kind: KindString, str: s} }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// NumberList копирует переданные числа, исходный срез можно переиспользовать.
func NumberList(nums ...float64) Value {
	list := make([]float64, len(nums))
	copy(list, nums)
	return Value{kind: KindNumberList, list: list}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsValid() bool { return v.kind != 0 }

func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

func (v Value) BoolValue() (bool, bool) { return v.b, v.kind == KindBool }

func (v Value) Num() (float64, bool) { return v.num, v.kind == KindNumber }

func (v Value) Nums() ([]float64, bool) {
	if v.kind != KindNumberList {
		return nil, false
	}
	res := make([]float64, len(v.list))
	copy(res, v.list)
	return res, true
}

// Interface возвращает значение в виде any: string, bool, float64 или []float64.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindBool:
		return v.b
	case KindNumber:
		return v.num
	case KindNumberList:
		res, _ := v.Nums()
		return res
	}
	return nil
}

func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return sameNumber(v.num, o.num)
	case KindNumberList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !sameNumber(v.list[i], o.list[i]) {
				return false
			}
		}
	}
	return true
}

func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return formatNumber(v.num)
	case KindNumberList:
		parts := make([]string, len(v.list))
		for i, n := range v.list {
			parts[i] = formatNumber(n)
		}
		return "[" + strings.Join(parts, ",") + "]"
	}
	return "<invalid>"
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindBool:
		return json.Marshal(v.b)
	case KindNumber:
		return marshalNumber(v.num)
	case KindNumberList:
		buf := []byte{'['}
		for i, n := range v.list {
			if i > 0 {
				buf = append(buf, ',')
			}
			b, err := marshalNumber(n)
			if err != nil {
				return nil, err
			}
			buf = append(buf, b...)
		}
		return append(buf, ']'), nil
	}
	return []byte("null"), nil
}

func (v Value) MarshalYAML() (any, error) {
	switch v.kind {
	case KindNumber:
		return yamlNumber(v.num), nil
	case KindNumberList:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
		for _, n := range v.list {
			node.Content = append(node.Content, yamlNumber(n))
		}
		return node, nil
	}
	return v.Interface(), nil
}

func (v Value) EncodeMsgpack(enc *msgpack.Encoder) error {
	switch v.kind {
	case KindString:
		return enc.EncodeString(v.str)
	case KindBool:
		return enc.EncodeBool(v.b)
	case KindNumber:
		return encodeMsgpackNumber(enc, v.num)
	case KindNumberList:
		if err := enc.EncodeArrayLen(len(v.list)); err != nil {
			return err
		}
		for _, n := range v.list {
			if err := encodeMsgpackNumber(enc, n); err != nil {
				return err
			}
		}
		return nil
	}
	return enc.EncodeNil()
}

// NaN и бесконечности в JSON записываются как null
func marshalNumber(f float64) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func yamlNumber(f float64) *yaml.Node {
	switch {
	case math.IsNaN(f):
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: ".nan"}
	case math.IsInf(f, 1):
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: ".inf"}
	case math.IsInf(f, -1):
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: "-.inf"}
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(int64(f), 10)}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(f, 'g', -1, 64)}
}

func encodeMsgpackNumber(enc *msgpack.Encoder, f float64) error {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return enc.EncodeInt(int64(f))
	}
	return enc.EncodeFloat64(f)
}

func sameNumber(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}
