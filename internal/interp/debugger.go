package interp

// Debugger wraps an Interpreter with the step/continue/print command
// set the original's shrust-based shell exposed, minus the shell
// dependency itself (see debugger_cli.go for the command loop).
type Debugger struct {
	it     *Interpreter
	cursor Cursor
}

// NewDebugger starts funcName's activation and returns a Debugger
// paused at its first instruction.
func NewDebugger(it *Interpreter, funcName string, args []Value) (*Debugger, error) {
	cur, err := it.Start(funcName, args)
	if err != nil {
		return nil, err
	}
	return &Debugger{it: it, cursor: cur}, nil
}

// Step advances by exactly one instruction.
func (d *Debugger) Step() (StepResult, error) {
	res, err := d.it.Step(d.cursor)
	if err != nil {
		return StepResult{}, err
	}
	if res.Kind == StepContinue {
		d.cursor = res.Next
	}
	return res, nil
}

// Continue steps until the activation returns or an error occurs.
func (d *Debugger) Continue() (Value, error) {
	for {
		res, err := d.Step()
		if err != nil {
			return Value{}, err
		}
		if res.Kind == StepExit {
			return res.Value, nil
		}
	}
}

// Print looks up a bound variable in the current activation.
func (d *Debugger) Print(name string) (Value, error) {
	return d.it.GetVariable(name)
}

// Cursor reports the debugger's current instruction location.
func (d *Debugger) Cursor() Cursor {
	return d.cursor
}
