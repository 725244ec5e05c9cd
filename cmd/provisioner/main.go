package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spec-kit/contest-provisioner/internal/cli"
	apperrors "github.com/spec-kit/contest-provisioner/pkg/util"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var de *apperrors.DomainError
		if errors.As(err, &de) && len(de.Details) > 0 {
			fmt.Fprintf(os.Stderr, "details: %v\n", de.Details)
		}
		os.Exit(apperrors.ExitCode(err))
	}
}
