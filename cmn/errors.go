package cmn

import "errors"

// Failure classes shared by the remote readers, the math and the state files.
// Wrap with fmt.Errorf("%w: ...", ErrX) and test with errors.Is.
var (
	ErrTransient   = errors.New("transient remote failure")
	ErrTerminal    = errors.New("terminal remote failure")
	ErrData        = errors.New("data error")
	ErrPersistence = errors.New("persistence error")
)
