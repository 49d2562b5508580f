package doctree

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Attrs атрибуты ноды. Порядок ключей совпадает с порядком первой установки
// и сохраняется при сериализации в любом формате.
type Attrs struct {
	m *orderedmap.OrderedMap[string, Value]
}

func NewAttrs() *Attrs {
	return &Attrs{m: orderedmap.New[string, Value]()}
}

// Set добавляет атрибут в конец или заменяет значение существующего без смены позиции.
func (a *Attrs) Set(key string, v Value) {
	a.m.Set(key, v)
}

func (a *Attrs) Get(key string) (Value, bool) {
	if a == nil {
		return Value{}, false
	}
	return a.m.Get(key)
}

func (a *Attrs) Has(key string) bool {
	_, ok := a.Get(key)
	return ok
}

func (a *Attrs) Len() int {
	if a == nil {
		return 0
	}
	return a.m.Len()
}

func (a *Attrs) Keys() []string {
	if a == nil {
		return nil
	}
	keys := make([]string, 0, a.m.Len())
	for pair := a.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Each обходит атрибуты в порядке вставки, пока f возвращает true.
func (a *Attrs) Each(f func(key string, v Value) bool) {
	if a == nil {
		return
	}
	for pair := a.m.Oldest(); pair != nil; pair = pair.Next() {
		if !f(pair.Key, pair.Value) {
			return
		}
	}
}

func (a *Attrs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	i := 0
	var err error
	a.Each(func(key string, v Value) bool {
		if i > 0 {
			buf.WriteByte(',')
		}
		i++

		var kb, vb []byte
		if kb, err = json.Marshal(key); err != nil {
			return false
		}
		if vb, err = v.MarshalJSON(); err != nil {
			err = fmt.Errorf("attr %q: %w", key, err)
			return false
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
		return true
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (a *Attrs) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	var err error
	a.Each(func(key string, v Value) bool {
		var vn *yaml.Node
		if vn, err = yamlValueNode(v); err != nil {
			return false
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			vn,
		)
		return true
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

func yamlValueNode(v Value) (*yaml.Node, error) {
	raw, err := v.MarshalYAML()
	if err != nil {
		return nil, err
	}
	if n, ok := raw.(*yaml.Node); ok {
		return n, nil
	}
	var n yaml.Node
	if err := n.Encode(raw); err != nil {
		return nil, err
	}
	return &n, nil
}

func (a *Attrs) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(a.Len()); err != nil {
		return err
	}
	var err error
	a.Each(func(key string, v Value) bool {
		if err = enc.EncodeString(key); err != nil {
			return false
		}
		err = v.EncodeMsgpack(enc)
		return err == nil
	})
	return err
}
