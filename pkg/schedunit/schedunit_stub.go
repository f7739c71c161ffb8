//go:build !linux

package schedunit

import (
	"context"
	"errors"

	"pricemon/internal/schedule"
	"pricemon/internal/taskreg"
	logx "pricemon/pkg/logx"
)

var ErrUnsupported = errors.New("schedunit: unsupported OS (linux only)")

type Manager struct{}

type Options struct {
	UnitDir  string
	Timezone string
	Log      logx.Logger
}

func New(ctx context.Context, opts Options) (*Manager, error) {
	return nil, ErrUnsupported
}

func (m *Manager) Close() error { return nil }

func (m *Manager) Preflight(ctx context.Context) error { return ErrUnsupported }

func (m *Manager) Register(ctx context.Context, id string, action taskreg.ActionSpec, slot schedule.TimeSlot, policy taskreg.RunPolicy, principal taskreg.Principal) error {
	return ErrUnsupported
}

func (m *Manager) Unregister(ctx context.Context, id string) error { return ErrUnsupported }

func (m *Manager) Query(ctx context.Context, pattern string) ([]taskreg.Registration, error) {
	return nil, ErrUnsupported
}

func (m *Manager) StartNow(ctx context.Context, id string) error { return ErrUnsupported }
