package cachetap

import (
	"fmt"
	"io"
	"strconv"
)

// Replay renders the recorded calls of an instrumented operation: a header
// with the call count, then one line per recorded call pairing its inputs
// with its output. Inputs and outputs are paired index-wise up to the
// shorter sequence; trailing unpaired entries are dropped. A nil or
// unbound handle renders nothing.
func Replay(w io.Writer, op *OpRef) error {
	if op == nil || op.store == nil {
		return nil
	}

	count := int64(0)

	exists, err := op.store.Exists(op.name)
	if err != nil {
		return err
	}
	if exists {
		raw, err := op.store.Get(op.name)
		if err != nil {
			return err
		}

		count, err = strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return err
		}
	}

	inputs, err := op.store.LRange(op.name+":inputs", 0, -1)
	if err != nil {
		return err
	}

	outputs, err := op.store.LRange(op.name+":outputs", 0, -1)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s was called %d times:\n", op.name, count)

	pairs := len(inputs)
	if len(outputs) < pairs {
		pairs = len(outputs)
	}

	for i := 0; i < pairs; i++ {
		fmt.Fprintf(w, "%s%s -> %s\n", op.name, inputs[i], outputs[i])
	}

	return nil
}
