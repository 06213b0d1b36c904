// Package debug sets up the zerolog loggers razortag commands log through.
package debug

import (
	"fmt"
	"io"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

const timeFormat = "2006-01-02T15:04:05.0000Z"

// NewLogger returns a console logger writing to w with the time and caller hooks
// installed. The hooks fill the console writer's time and caller columns.
func NewLogger(w io.Writer, level zerolog.Level, withColor bool) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: w, NoColor: !withColor}

	return zerolog.New(out).
		Level(level).
		Hook(TimeHook{}).
		Hook(CallerHook{WithColor: withColor})
}

// ParseLevel accepts zerolog level names; an empty name is info.
func ParseLevel(name string) (zerolog.Level, error) {
	if name == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(strings.ToLower(name))
}

// skipFrames reads the event's unexported skip count so CallerHook reports the same
// frame zerolog's own Caller() would.
func skipFrames(e *zerolog.Event) int {
	v := reflect.ValueOf(e).Elem()
	field := v.FieldByName("skipFrame")
	if field.IsValid() && field.CanInt() {
		return int(field.Int())
	}
	return 0
}

type TimeHook struct {
	// Format defaults to millisecond precision without a zone.
	Format string
}

func (t TimeHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	format := t.Format
	if format == "" {
		format = timeFormat
	}
	e.Str("time", time.Now().Format(format))
}

type CallerHook struct {
	WithColor bool
}

func (c CallerHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	pc, file, line, ok := runtime.Caller(skipFrames(e) + 3)
	if !ok {
		return
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return
	}
	pkg, _ := SplitFuncName(fn.Name())
	e.Str("caller", FormatCaller(pkg, file, line, c.WithColor))
}

// SplitFuncName splits a runtime function name such as
// "github.com/a/b.(*T).Method" into its package path and the rest.
func SplitFuncName(name string) (pkg, function string) {
	lastSlash := max(strings.LastIndexByte(name, '/'), 0)

	firstDot := strings.IndexByte(name[lastSlash:], '.')
	if firstDot < 0 {
		return name, ""
	}
	firstDot += lastSlash

	pkg = name[:firstDot]
	function = name[firstDot+1:]

	if before, after, ok := strings.Cut(pkg, ".("); ok {
		pkg = before
		function = "(" + after + "." + function
	}
	return pkg, function
}

// FormatCaller renders pkg:file.go:line.
func FormatCaller(pkg, path string, line int, withColor bool) string {
	file := path
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		file = path[i+1:]
	}
	if !withColor {
		return fmt.Sprintf("%s:%s:%d", pkg, file, line)
	}

	sep := color.New(color.Faint).Sprint(":")
	return pkg + sep + color.New(color.Bold).Sprint(file) + sep + color.New(color.FgHiRed, color.Bold).Sprint(line)
}
