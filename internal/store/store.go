package store

import (
	"context"

	"github.com/me/schedsim/pkg/model"
)

// Store archives finished simulation runs. It is write-once history: nothing
// in it is ever loaded back into a simulator.
type Store interface {
	// SaveRun stores the report, its rejection ledger and the run parameters.
	SaveRun(ctx context.Context, report *model.Report, params any) error
	GetRun(ctx context.Context, id string) (*model.Run, error)
	ListRuns(ctx context.Context, opts model.ListOptions) ([]*model.Run, int, error)
	DeleteRun(ctx context.Context, id string) error

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
