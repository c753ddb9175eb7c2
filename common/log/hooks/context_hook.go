package hooks

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// contextHook adds the "file:line" of the logging call to each entry, trimmed
// to the path below the module root.
type contextHook struct {
	root string
}

func NewContextHook() contextHook {
	return contextHook{root: "nodesched/"}
}

func (hook contextHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (hook contextHook) Fire(entry *logrus.Entry) error {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		if !strings.Contains(f.File, "sirupsen/logrus") && !strings.HasSuffix(f.File, "context_hook.go") {
			file := f.File
			if i := strings.LastIndex(file, hook.root); i >= 0 {
				file = file[i+len(hook.root):]
			}
			entry.Data["file:line"] = fmt.Sprintf("%s:%d", file, f.Line)
			return nil
		}
		if !more {
			return nil
		}
	}
}
