// The main package is the entry point of the fibcalc application. It delegates
// argument parsing, configuration, calculation orchestration, and result
// display to the internal/app package, keeping this file a thin launcher.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/agbru/fibcalc/internal/app"
	apperrors "github.com/agbru/fibcalc/internal/errors"
)

func main() {
	if app.HasVersionFlag(os.Args[1:]) {
		app.PrintVersion(os.Stdout)
		os.Exit(apperrors.ExitSuccess)
	}

	application, err := app.New(os.Args, os.Stderr)
	if err != nil {
		if app.IsHelpError(err) {
			os.Exit(apperrors.ExitSuccess)
		}
		fmt.Fprintln(os.Stderr, "Configuration error:", err)
		os.Exit(apperrors.ExitErrorConfig)
	}

	exitCode := application.Run(context.Background(), os.Stdout)
	os.Exit(exitCode)
}
