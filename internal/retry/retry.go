// Package retry は一時的な障害に対するリトライポリシーを提供する。
// エラー種別の分類関数でリトライ対象を判定し、線形に増加するバックオフで再試行する。
package retry

import (
	"context"
	"log/slog"
	"time"
)

// Policy はリトライ回数とバックオフ遅延の設定。
type Policy struct {
	MaxRetries int           // 初回試行に追加するリトライ回数の上限
	BaseDelay  time.Duration // 初回リトライ前の遅延
	StepDelay  time.Duration // 2回目以降のリトライで試行回数に乗じる遅延
}

// CreatePolicy はcreateオペレーション向けのデフォルトポリシーを返す。
// 一時的なネットワーク障害のみを対象に、最大2回まで追加試行する。
// 遅延は200ms、その後は500ms×試行回数。
func CreatePolicy() Policy {
	return Policy{
		MaxRetries: 2,
		BaseDelay:  200 * time.Millisecond,
		StepDelay:  500 * time.Millisecond,
	}
}

// Delay はn回目（1始まり）のリトライ前に置く遅延を返す。
func (p Policy) Delay(attempt int) time.Duration {
	if attempt <= 1 {
		return p.BaseDelay
	}
	return p.StepDelay * time.Duration(attempt)
}

// Classifier はエラーがリトライ対象かを判定する関数。
type Classifier func(error) bool

// Do はfnを実行し、retryableと判定された失敗をポリシーに従って再試行する。
// 検証エラーや認可エラーのようなリトライ対象外の失敗は即座に返す。
// ctxのキャンセルはバックオフ待機を中断する。
func Do[T any](ctx context.Context, policy Policy, retryable Classifier, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	result, err := fn(ctx)
	if err == nil || retryable == nil || !retryable(err) {
		return result, err
	}

	for attempt := 1; attempt <= policy.MaxRetries; attempt++ {
		delay := policy.Delay(attempt)
		slog.Warn("retrying after transient failure",
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}

		result, err = fn(ctx)
		if err == nil || !retryable(err) {
			return result, err
		}
	}

	return zero, err
}
