package fetch

import (
	"context"
	"time"
)

var (
	DocumentStatus = documentStatus
	ErrNotIdle     = errNotIdle
)

type IdleWatch = idleWatch

func NewIdleWatch() *IdleWatch { return newIdleWatch() }

func (w *idleWatch) Handle(ev any) { w.handle(ev) }

func (w *idleWatch) Wait(ctx context.Context, d time.Duration) error { return w.wait(ctx, d) }

func (r *Robots) SetNow(now func() time.Time) { r.now = now }
