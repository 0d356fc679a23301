package validator

import (
	"reflect"
	"regexp"
	"runtime"
	"strings"
)

// Regexp fails when the value is not a string matching pattern.
// Panics if pattern does not compile.
func Regexp(pattern string) Func {
	return RegexpCompiled(regexp.MustCompile(pattern))
}

func RegexpCompiled(re *regexp.Regexp) Func {
	return func(f *Field, _ map[string]any) error {
		v := f.Value()
		if v == nil {
			return nil
		}
		s, ok := v.(string)
		if !ok || !re.MatchString(s) {
			return NewError(CodeRegexp, map[string]any{"pattern": re.String()})
		}
		return nil
	}
}

// Function fails when fn returns false for the value. The message names fn.
func Function(fn func(value any) bool) Func {
	name := funcName(fn)
	return func(f *Field, _ map[string]any) error {
		v := f.Value()
		if v == nil {
			return nil
		}
		if !fn(v) {
			return NewError(CodeFunction, map[string]any{"function": name})
		}
		return nil
	}
}

func funcName(fn any) string {
	rf := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if rf == nil {
		return "function"
	}
	name := rf.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
