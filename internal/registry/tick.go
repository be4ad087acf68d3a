package registry

import (
	"context"
	"time"
)

// Tick 周期性处理：断连超时、只读切换的宽限期、自动替换、替换记录清理
func (s *State) Tick(ctx context.Context, now time.Time) error {
	return s.update(ctx, func() error {
		s.checkAgentTimeouts(now)
		for _, id := range sortedKeys(s.disks.rows) {
			if !s.disks.rows[id].BrokenTs.IsZero() {
				s.reevaluateDisk(now, id)
			}
		}
		s.replaceBrokenDevices(now)
		s.purgeReplacementHistory(now)
		return nil
	})
}
