package cli

import (
	"net/http"

	"github.com/pkg/errors"

	cerrors "github.com/twitter/nodesched/common/errors"
	"github.com/twitter/nodesched/scheduler/client"
	"github.com/twitter/nodesched/scheduler/domain"
	"github.com/twitter/nodesched/scheduler/knapsack"
)

// roundError attaches the exit code for a failed round. Failures that are
// neither bad input nor an infeasible knapsack come from the ledger store.
func roundError(err error) error {
	if err == nil {
		return nil
	}
	cause := errors.Cause(err)
	if se, ok := cause.(*client.StatusError); ok {
		switch se.Code {
		case http.StatusBadRequest:
			return cerrors.NewError(err, cerrors.InvalidInputExitCode)
		case http.StatusUnprocessableEntity:
			return cerrors.NewError(err, cerrors.InfeasibleExitCode)
		case http.StatusServiceUnavailable:
			return cerrors.NewError(err, cerrors.LedgerStoreExitCode)
		}
		return cerrors.NewError(err, cerrors.GenericFailureExitCode)
	}
	switch {
	case domain.IsInvalidInput(cause):
		return cerrors.NewError(err, cerrors.InvalidInputExitCode)
	case knapsack.IsInfeasible(err):
		return cerrors.NewError(err, cerrors.InfeasibleExitCode)
	}
	return cerrors.NewError(err, cerrors.LedgerStoreExitCode)
}
