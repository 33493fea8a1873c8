package logger

import (
	"context"
	"fmt"
)

// Leveled adapts a Logger to the key/value leveled interface used by HTTP
// client libraries such as go-retryablehttp.
type Leveled struct {
	L Logger
}

// NewLeveled wraps l.
func NewLeveled(l Logger) *Leveled {
	return &Leveled{L: l}
}

func (a *Leveled) Error(msg string, keysAndValues ...interface{}) {
	a.L.Error(context.Background(), msg, kvFields(keysAndValues)...)
}

func (a *Leveled) Info(msg string, keysAndValues ...interface{}) {
	a.L.Info(context.Background(), msg, kvFields(keysAndValues)...)
}

// Debug is where the retry client reports every attempt.
func (a *Leveled) Debug(msg string, keysAndValues ...interface{}) {
	a.L.Debug(context.Background(), msg, kvFields(keysAndValues)...)
}

func (a *Leveled) Warn(msg string, keysAndValues ...interface{}) {
	a.L.Warn(context.Background(), msg, kvFields(keysAndValues)...)
}

// kvFields pairs up alternating keys and values. A trailing key without a
// value is kept under "extra".
func kvFields(kv []interface{}) []Field {
	fields := make([]Field, 0, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		if i+1 >= len(kv) {
			fields = append(fields, Any("extra", kv[i]))
			break
		}
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		fields = append(fields, Any(key, kv[i+1]))
	}
	return fields
}
