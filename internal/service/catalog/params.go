package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Params 工具参数，值来自 JSON 解码或意图路由的后处理
type Params map[string]any

// String 取字符串参数，数字会被格式化
func (p Params) String(key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Int 取整数参数，缺失或无法解析时返回 def
func (p Params) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
		if f, err := v.Float64(); err == nil {
			return int(f)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

// Float 取浮点参数，缺失、零值或无法解析时返回 nil
func (p Params) Float(key string) *float64 {
	var f float64
	switch v := p[key].(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return nil
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		f = n
	default:
		return nil
	}
	if f <= 0 {
		return nil
	}
	return &f
}

// Has 参数是否存在且非空
func (p Params) Has(key string) bool {
	return p.String(key) != ""
}

// DecodeArgs 解析工具调用的 JSON 参数，格式错误时先尝试修复
func DecodeArgs(argumentsInJSON string) (Params, error) {
	s := strings.TrimSpace(argumentsInJSON)
	if s == "" {
		return Params{}, nil
	}

	params := Params{}
	if err := json.Unmarshal([]byte(s), &params); err == nil {
		return params, nil
	}

	repaired, err := jsonrepair.JSONRepair(s)
	if err != nil {
		return nil, fmt.Errorf("failed to repair tool arguments: %w", err)
	}
	params = Params{}
	if err := json.Unmarshal([]byte(repaired), &params); err != nil {
		return nil, fmt.Errorf("invalid tool arguments: %w", err)
	}
	return params, nil
}
