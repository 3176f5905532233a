// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"context"
	"log/slog"
	"time"
)

// RetryWithBackoff calls op up to attempts times. The wait between attempts
// starts at delay and doubles after every failure. When all attempts fail the
// last error is returned unwrapped.
func RetryWithBackoff(ctx context.Context, op func() error, attempts int, delay time.Duration) error {
	if attempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := op()
		if err == nil {
			return nil
		}
		if attempt == attempts {
			return err
		}

		slog.Debug("attempt failed", "attempt", attempt, "of", attempts, "retryIn", delay, "err", err)
		if err := sleep(ctx, delay); err != nil {
			return err
		}
		delay *= 2
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
