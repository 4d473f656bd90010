package logging

import (
	"errors"
	"fmt"
	"math/bits"
	"strconv"
	"strings"
	"sync/atomic"
)

var ErrUnknownLevel = errors.New("unknown log level")

// LogLevel 日志级别集合，每一位代表一个独立的级别
type LogLevel uint32

const (
	Off   LogLevel = 0
	Debug LogLevel = 1 << (iota - 1)
	Info
	Event
	Warn
	Error

	All LogLevel = ^LogLevel(0)
)

// 按位从低到高排列的具名级别
var namedLevels = [...]LogLevel{Debug, Info, Event, Warn, Error}

// FromRawValue 不做任何校验，任意位组合均可
func FromRawValue(value uint32) LogLevel {
	return LogLevel(value)
}

func (l LogLevel) RawValue() uint32 {
	return uint32(l)
}

func (l LogLevel) Union(o LogLevel) LogLevel {
	return l | o
}

func (l LogLevel) Intersect(o LogLevel) LogLevel {
	return l & o
}

func (l LogLevel) Subtract(o LogLevel) LogLevel {
	return l &^ o
}

// Contains 当 o 的所有位都在 l 中时返回 true
func (l LogLevel) Contains(o LogLevel) bool {
	return l&o == o
}

// Overlaps 当 l 与 o 至少有一位相同时返回 true
func (l LogLevel) Overlaps(o LogLevel) bool {
	return l&o != 0
}

func (l LogLevel) IsEmpty() bool {
	return l == Off
}

func (l LogLevel) Equal(o LogLevel) bool {
	return l == o
}

func (l LogLevel) Hash() uint64 {
	return uint64(l)
}

// String 仅对具名级别精确匹配，组合值返回 "Unknown"
//
//	Event 同样参与匹配
func (l LogLevel) String() string {
	switch l {
	case Off:
		return "Off"
	case Debug:
		return "Debug"
	case Info:
		return "Info"
	case Event:
		return "Event"
	case Warn:
		return "Warn"
	case Error:
		return "Error"
	case All:
		return "All"
	default:
		return "Unknown"
	}
}

// Flags 返回 l 包含的具名级别，按位从低到高
func (l LogLevel) Flags() []LogLevel {
	var flags []LogLevel
	for _, named := range namedLevels {
		if l.Contains(named) {
			flags = append(flags, named)
		}
	}
	return flags
}

// Expr 返回可被 ParseLevel 解析回来的表达式，如 "Debug|Error"
func (l LogLevel) Expr() string {
	if l == Off || l == All {
		return l.String()
	}

	sb := strings.Builder{}
	rest := l
	for _, named := range namedLevels {
		if !l.Contains(named) {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(named.String())
		rest &^= named
	}

	if rest != 0 {
		if sb.Len() > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString("0x" + strconv.FormatUint(uint64(rest), 16))
	}
	return sb.String()
}

// AtLeast 返回 l 的最低位及所有更严重的具名级别
func AtLeast(l LogLevel) LogLevel {
	if l == Off {
		return Off
	}

	lowest := LogLevel(1) << bits.TrailingZeros32(uint32(l))
	mask := lowest
	for _, named := range namedLevels {
		if named > lowest {
			mask |= named
		}
	}
	return mask
}

// ParseLevel 解析级别表达式
//
//	支持大小写无关的级别名、十进制或 0x 十六进制数值、">=Warn" 形式，
//	多项之间以 '|'、',' 或空白分隔
func ParseLevel(s string) (LogLevel, error) {
	terms := strings.FieldsFunc(s, func(r rune) bool {
		return r == '|' || r == ',' || r == ' ' || r == '\t'
	})
	if len(terms) == 0 {
		return Off, fmt.Errorf("parse level %q: %w", s, ErrUnknownLevel)
	}

	var result LogLevel
	for _, term := range terms {
		l, err := parseTerm(term)
		if err != nil {
			return Off, fmt.Errorf("parse level %q: %w", s, err)
		}
		result |= l
	}
	return result, nil
}

func parseTerm(term string) (LogLevel, error) {
	if len(term) == 0 {
		return Off, fmt.Errorf("%w: empty term", ErrUnknownLevel)
	}
	if rest, ok := strings.CutPrefix(term, ">="); ok {
		l, err := parseTerm(rest)
		if err != nil {
			return Off, err
		}
		return AtLeast(l), nil
	}

	switch strings.ToLower(term) {
	case "off", "none":
		return Off, nil
	case "debug":
		return Debug, nil
	case "info":
		return Info, nil
	case "event":
		return Event, nil
	case "warn", "warning":
		return Warn, nil
	case "error":
		return Error, nil
	case "all":
		return All, nil
	}

	if term[0] >= '0' && term[0] <= '9' {
		v, err := strconv.ParseUint(term, 0, 32)
		if err != nil {
			return Off, fmt.Errorf("%w: %s", ErrUnknownLevel, term)
		}
		return FromRawValue(uint32(v)), nil
	}
	return Off, fmt.Errorf("%w: %s", ErrUnknownLevel, term)
}

func (l LogLevel) MarshalText() ([]byte, error) {
	return []byte(l.Expr()), nil
}

func (l *LogLevel) UnmarshalText(text []byte) error {
	v, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// LevelVar 可并发读写的级别集合
type LevelVar struct {
	v atomic.Uint32
}

func NewLevelVar(l LogLevel) *LevelVar {
	lv := &LevelVar{}
	lv.Store(l)
	return lv
}

func (ss *LevelVar) Load() LogLevel {
	return LogLevel(ss.v.Load())
}

func (ss *LevelVar) Store(l LogLevel) {
	ss.v.Store(uint32(l))
}

func (ss *LevelVar) String() string {
	return ss.Load().Expr()
}
