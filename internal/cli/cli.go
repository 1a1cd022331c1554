package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/diffusor/talkytime/internal/cli/commands"
)

// argValidationError is checked by name rather than type, since commands
// keeps it unexported; Run only needs to distinguish "bad arguments" (exit
// 2) from everything else cobra can return (exit 1), per spec §6.
type argValidationError interface{ argValidation() }

// Run executes the root command and maps its outcome to the exit codes
// spec §6 specifies: 0 success, 1 any surfaced runtime error, 2 an
// argument-validation error.
func Run() {
	err := commands.RootCmd.Execute()
	if err == nil {
		return
	}

	var av argValidationError
	if errors.As(err, &av) {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	os.Exit(1)
}
