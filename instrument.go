package cachetap

import (
	"fmt"
	"strings"

	"github.com/cachetap/cachetap/internal/storage"
)

// OpFunc is the shape of an instrumentable storage operation.
type OpFunc func(args ...interface{}) (interface{}, error)

// OpRef identifies an instrumented operation bound to a live store. Replay
// consumes it to locate the operation's counter and history keys.
type OpRef struct {
	name  string
	store storage.Store
}

func (ref *OpRef) Name() string {
	return ref.name
}

// CountCalls wraps fn so that every call first increments the counter
// stored at name. The increment happens before delegation and is not
// rolled back when fn fails.
func CountCalls(store storage.Store, name string, fn OpFunc) OpFunc {
	return func(args ...interface{}) (interface{}, error) {
		if _, err := store.Incr(name); err != nil {
			return nil, err
		}

		return fn(args...)
	}
}

// CallHistory wraps fn so that its arguments are appended to the
// `name:inputs` list before the call and its rendered result to
// `name:outputs` after it. When fn fails, the input entry stays recorded
// and no output entry is written.
func CallHistory(store storage.Store, name string, fn OpFunc) OpFunc {
	inputs := name + ":inputs"
	outputs := name + ":outputs"

	return func(args ...interface{}) (interface{}, error) {
		if err := store.RPush(inputs, []byte(formatArgs(args))); err != nil {
			return nil, err
		}

		result, err := fn(args...)
		if err != nil {
			return nil, err
		}

		if err := store.RPush(outputs, []byte(fmt.Sprintf("%v", result))); err != nil {
			return nil, err
		}

		return result, nil
	}
}

// Instrument applies both wrappers in the canonical order, history outside
// the counter, so one logical call records one increment and one matched
// input/output pair.
func Instrument(store storage.Store, name string, fn OpFunc) OpFunc {
	return CallHistory(store, name, CountCalls(store, name, fn))
}

func formatArgs(args []interface{}) string {
	parts := make([]string, len(args))

	for i, arg := range args {
		switch value := arg.(type) {
		case string:
			parts[i] = fmt.Sprintf("%q", value)
		case []byte:
			parts[i] = fmt.Sprintf("%q", value)
		default:
			parts[i] = fmt.Sprintf("%v", value)
		}
	}

	return "(" + strings.Join(parts, ", ") + ")"
}
