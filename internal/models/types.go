package models

import (
	"database/sql/driver"
	"encoding/json"
	"sort"
	"strings"
)

// JSON 类型定义，用于存储结构化快照内容
type JSON map[string]interface{}

// Value 实现 driver.Valuer 接口
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan 实现 sql.Scanner 接口
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// StringArray 字符串数组类型，用于存储 tags、images 等
type StringArray []string

// Value 实现 driver.Valuer 接口
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan 实现 sql.Scanner 接口
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// Variant 规格选择（维度 → 选中值），创建后不可变
type Variant map[string]string

// Key 返回规格的规范化标识：按维度名排序的 axis=value 对，用于区分同一商品的不同行项
func (v Variant) Key() string {
	if len(v) == 0 {
		return ""
	}
	axes := make([]string, 0, len(v))
	for axis := range v {
		axes = append(axes, axis)
	}
	sort.Strings(axes)
	pairs := make([]string, 0, len(axes))
	for _, axis := range axes {
		pairs = append(pairs, axis+"="+v[axis])
	}
	return strings.Join(pairs, ";")
}

// Clone 返回规格副本
func (v Variant) Clone() Variant {
	if v == nil {
		return nil
	}
	out := make(Variant, len(v))
	for axis, value := range v {
		out[axis] = value
	}
	return out
}

// Value 实现 driver.Valuer 接口
func (v Variant) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// Scan 实现 sql.Scanner 接口
func (v *Variant) Scan(value interface{}) error {
	if value == nil {
		*v = Variant{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, v)
}
