package logging

import (
	"strings"

	"github.com/tidwall/btree"
)

// Filter 按 path 前缀决定允许输出的级别集合，构建后只读
type Filter struct {
	prefixes      btree.Map[string, LogLevel]
	defaultLevels LogLevel
}

func NewFilter(prefixes map[string]LogLevel, defaultLevels LogLevel) *Filter {
	f := &Filter{defaultLevels: defaultLevels}
	for prefix, levels := range prefixes {
		f.prefixes.Set(prefix, levels)
	}
	return f
}

func (ss *Filter) DefaultLevels() LogLevel {
	return ss.defaultLevels
}

// Levels 返回最长匹配前缀对应的级别集合，无匹配时返回默认值
func (ss *Filter) Levels(path string) LogLevel {
	levels := ss.defaultLevels
	// 所有前缀都不大于 path，降序遇到的第一个前缀即最长前缀
	ss.prefixes.Descend(path, func(key string, value LogLevel) bool {
		if strings.HasPrefix(path, key) {
			levels = value
			return false
		}
		return true
	})
	return levels
}

// Enabled 单条日志的级别与允许集合有交集时输出
func (ss *Filter) Enabled(path string, level LogLevel) bool {
	if level == Off {
		return false
	}
	return ss.Levels(path).Overlaps(level)
}
