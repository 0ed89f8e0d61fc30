package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"quote_backend/internal/feature/candlesticks/domain/entity"
)

const (
	// MaxCount は1回のクエリで要求できるローソク足の最大件数です。
	MaxCount = 1000
	// DefaultTimeout はクライアント側で設定する既定のタイムアウトです。
	DefaultTimeout = 30 * time.Second
)

// HistoryProvider は「オフセット指定でN本のローソク足を取得する」プリミティブを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
// 実装は複数ゴルーチンからの同時呼び出しに対して安全である必要があります。
type HistoryProvider interface {
	// HistoryByOffset は基準時刻を起点にローソク足を時刻の昇順で返します。
	HistoryByOffset(ctx context.Context, q entity.HistoryQuery) ([]entity.Candlestick, error)
}

// HistoryUsecase はクエリをプロバイダ呼び出しに変換し、結果を1回だけ非同期に届けます。
// 状態を持たないため、複数の呼び出しを同時に発行できます。
type HistoryUsecase struct {
	provider HistoryProvider
	timeout  time.Duration
}

// NewHistoryUsecase はHistoryUsecaseの新しいインスタンスを生成します。
// timeoutが0以下の場合、クライアント側のタイムアウトは設定しません。
// providerがnilの場合は呼び出し側の誤用としてpanicします。
func NewHistoryUsecase(provider HistoryProvider, timeout time.Duration) *HistoryUsecase {
	if provider == nil {
		panic("usecase: nil HistoryProvider")
	}
	return &HistoryUsecase{provider: provider, timeout: timeout}
}

// Pending は実行中のリクエストのハンドルです。結果はちょうど1回だけ確定します。
type Pending struct {
	once    sync.Once
	done    chan struct{}
	candles []entity.Candlestick
	err     error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

// Done は結果が確定したときにcloseされるチャネルを返します。
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Result は結果が確定するまでブロックし、ローソク足またはエラーのどちらか一方を返します。
func (p *Pending) Result() ([]entity.Candlestick, error) {
	<-p.done
	return p.candles, p.err
}

func (p *Pending) resolve(cs []entity.Candlestick, err error) {
	p.once.Do(func() {
		if err != nil {
			cs = nil
		}
		p.candles, p.err = cs, err
		close(p.done)
	})
}

// HistoryByOffsetAsync はリクエストを発行し、すぐにPendingを返します。
// バリデーションエラーの場合、プロバイダは呼び出されず、確定済みのPendingが返ります。
func (u *HistoryUsecase) HistoryByOffsetAsync(ctx context.Context, q entity.HistoryQuery) *Pending {
	p := newPending()
	if err := Validate(q); err != nil {
		p.resolve(nil, err)
		return p
	}
	if err := ctx.Err(); err != nil {
		p.resolve(nil, contextError(err))
		return p
	}
	go u.run(ctx, q, p)
	return p
}

// HistoryByOffsetFunc はリクエストを発行し、完了時にfnをちょうど1回呼び出します。
// fnはクライアントが管理するゴルーチン上で実行されます。
func (u *HistoryUsecase) HistoryByOffsetFunc(ctx context.Context, q entity.HistoryQuery, fn func([]entity.Candlestick, error)) {
	if fn == nil {
		panic("usecase: nil completion callback")
	}
	p := u.HistoryByOffsetAsync(ctx, q)
	go func() {
		fn(p.Result())
	}()
}

// HistoryByOffset は結果が確定するまでブロックする同期版です。
func (u *HistoryUsecase) HistoryByOffset(ctx context.Context, q entity.HistoryQuery) ([]entity.Candlestick, error) {
	return u.HistoryByOffsetAsync(ctx, q).Result()
}

type providerResult struct {
	candles []entity.Candlestick
	err     error
}

func (u *HistoryUsecase) run(ctx context.Context, q entity.HistoryQuery, p *Pending) {
	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	// 1件バッファにより、キャンセル後もプロバイダ側のゴルーチンはブロックしない
	ch := make(chan providerResult, 1)
	go func() {
		cs, err := u.provider.HistoryByOffset(ctx, q)
		ch <- providerResult{candles: cs, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			err := classify(ctx, r.err)
			slog.Debug("history request failed", "symbol", q.Symbol, "period", q.Period.String(), "error", err)
			p.resolve(nil, err)
			return
		}
		p.resolve(r.candles, nil)
	case <-ctx.Done():
		slog.Debug("history request aborted", "symbol", q.Symbol, "error", ctx.Err())
		p.resolve(nil, contextError(ctx.Err()))
	}
}

// classify はプロバイダのエラーを呼び出し元に返すカテゴリに振り分けます。
// ProviderErrorはそのまま返し、それ以外はメッセージを保ったままProviderErrorに包みます。
func classify(ctx context.Context, err error) error {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	switch {
	case errors.Is(err, ErrCancelled), errors.Is(err, ErrTimeout):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return contextError(err)
	case ctx.Err() != nil:
		return contextError(ctx.Err())
	}
	return &ProviderError{Message: err.Error(), Err: err}
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return ErrCancelled
}
