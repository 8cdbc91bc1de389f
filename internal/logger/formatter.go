package logger

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	colorRed    = 31
	colorYellow = 33
	colorBlue   = 36
	colorGray   = 37
)

const defaultTimestampFormat = "2006-01-02 15:04:05"

// fieldOrder puts the toaster fields first, in this order.
var fieldOrder = map[string]int{"file": 0, "spell": 1, "block": 2, "type": 3, "name": 4}

func colorOf(level logrus.Level) int {
	switch level {
	case logrus.DebugLevel, logrus.TraceLevel:
		return colorGray
	case logrus.WarnLevel:
		return colorYellow
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return colorRed
	default:
		return colorBlue
	}
}

// Formatter renders "time [LEVEL] message key=value ..." lines.
type Formatter struct {
	DisableColor    bool
	HideLogTime     bool
	TimestampFormat string
}

func (f *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	timestampFormat := f.TimestampFormat
	if timestampFormat == "" {
		timestampFormat = defaultTimestampFormat
	}
	if !f.HideLogTime {
		b.WriteString(entry.Time.Format(timestampFormat))
		b.WriteByte(' ')
	}

	line := fmt.Sprintf("[%s] %s", strings.ToUpper(entry.Level.String()), entry.Message)
	if f.DisableColor {
		b.WriteString(line)
	} else {
		fmt.Fprintf(b, "\033[%dm%s\033[0m", colorOf(entry.Level), line)
	}

	for _, k := range sortedKeys(entry.Data) {
		fmt.Fprintf(b, " %s=%v", k, entry.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func sortedKeys(data logrus.Fields) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		oi, iok := fieldOrder[keys[i]]
		oj, jok := fieldOrder[keys[j]]
		switch {
		case iok && jok:
			return oi < oj
		case iok != jok:
			return iok
		}
		return keys[i] < keys[j]
	})
	return keys
}
