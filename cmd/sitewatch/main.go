// Command sitewatch monitors a list of HTTP(S) sites: polling them on
// independent schedules, aggregating availability and response-time
// windows, writing raw and formatted logs, and presenting the result
// either as a terminal UI or a plain-text watch stream.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		var exitErr ExitCodeError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "sitewatch: %v\n", err)
		os.Exit(1)
	}
}

// ExitCodeError signals a non-zero exit code without calling os.Exit
// directly, so every layer below main can just return an error.
type ExitCodeError struct{ Code int }

func (e ExitCodeError) Error() string { return fmt.Sprintf("exit %d", e.Code) }
