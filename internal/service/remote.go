package service

import (
	"context"
	"fmt"

	"github.com/spec-kit/contest-provisioner/internal/domjudge"
	apperrors "github.com/spec-kit/contest-provisioner/pkg/util"
)

// RemoteClient is the authenticated request capability the engine consumes.
// An error return means the call produced no HTTP response (transport fault).
type RemoteClient interface {
	Get(ctx context.Context, path string) (*domjudge.Response, error)
	PostJSON(ctx context.Context, path string, body any) (*domjudge.Response, error)
}

func responseDiagnostic(resp *domjudge.Response) string {
	return fmt.Sprintf("status %d: %s", resp.StatusCode, apperrors.Truncate(resp.Text(), apperrors.DiagnosticLimit))
}

func errorDiagnostic(err error) string {
	return apperrors.Truncate(err.Error(), apperrors.DiagnosticLimit)
}
