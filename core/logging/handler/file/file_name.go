package file

import (
	"fmt"
	"strings"
	"time"

	assert "github.com/arl/assertgo"
)

const indexPlaceholder = "///__INDEX__///"

// fileNameTemplate 由 FileNameFormat 展开时间部分后得到，索引部分延后填充
//
//	%Y 年 %M 月 %D 日 %h 时 %m 分 %i 索引，% 与字母之间可以带宽度，如 %02M；%% 输出 %
type fileNameTemplate struct {
	text        string
	indexFormat string
}

func parseFileNameFormat(format string, t time.Time) fileNameTemplate {
	year, month, day := t.Date()

	escape := false
	tpl := fileNameTemplate{}
	sb := &strings.Builder{}
	item := &strings.Builder{}
	for _, c := range format {
		if !escape {
			if c == '%' {
				escape = true
				item.WriteByte('%')
			} else {
				sb.WriteRune(c)
			}
			continue
		}

		switch {
		case c == '%':
			sb.WriteByte('%')
		case c >= '0' && c <= '9':
			item.WriteRune(c)
			continue
		case c == 'Y':
			sb.WriteString(fmt.Sprintf(item.String()+"d", year))
		case c == 'M':
			sb.WriteString(fmt.Sprintf(item.String()+"d", int(month)))
		case c == 'D':
			sb.WriteString(fmt.Sprintf(item.String()+"d", day))
		case c == 'h':
			sb.WriteString(fmt.Sprintf(item.String()+"d", t.Hour()))
		case c == 'm':
			sb.WriteString(fmt.Sprintf(item.String()+"d", t.Minute()))
		case c == 'i':
			tpl.indexFormat = item.String() + "d"
			sb.WriteString(indexPlaceholder)
		default:
			sb.WriteString(item.String())
			sb.WriteRune(c)
		}

		item.Reset()
		escape = false
	}
	if escape {
		sb.WriteString(item.String())
	}

	tpl.text = sb.String()
	return tpl
}

func (ss fileNameTemplate) hasIndex() bool {
	return len(ss.indexFormat) > 0
}

func (ss fileNameTemplate) name(index int32) string {
	assert.True(index >= 0, "negative file index")

	if !ss.hasIndex() {
		return ss.text
	}
	return strings.ReplaceAll(ss.text, indexPlaceholder, fmt.Sprintf(ss.indexFormat, index))
}
