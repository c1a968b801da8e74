package util

import (
	"encoding/json"
	"strings"
)

// WordCount 统计空白分隔的单词数 纯函数 始终与文本保持一致
func WordCount(text string) int64 {
	return int64(len(strings.Fields(strings.TrimSpace(text))))
}

// JSONF 序列化为JSON字符串 用于日志输出
func JSONF(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
