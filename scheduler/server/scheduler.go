package server

//go:generate mockgen -source=scheduler.go -package=server -destination=scheduler_mock.go

import (
	"context"

	"github.com/twitter/nodesched/scheduler/domain"
	"github.com/twitter/nodesched/scheduler/ledger"
)

type Scheduler interface {
	// RunRound computes one round and updates the ledger as described on
	// domain.Request.
	RunRound(ctx context.Context, req domain.Request) (*domain.Result, error)

	// Ledger returns the persisted historical ledger.
	Ledger(ctx context.Context) (ledger.Ledger, error)
}

// Algorithm computes one round from inputs that have already been validated.
// hist is a snapshot the algorithm must not modify.
type Algorithm interface {
	Name() string
	Run(tasks []domain.Task, nodes []domain.Node, hist ledger.Ledger) (*domain.Result, error)
}
