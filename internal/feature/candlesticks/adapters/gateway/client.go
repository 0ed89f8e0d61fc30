package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"quote_backend/internal/feature/candlesticks/domain/entity"
	"quote_backend/internal/feature/candlesticks/transport/http/dto"
	"quote_backend/internal/feature/candlesticks/usecase"
)

const maxErrorBody = 64 << 10

// Client はゲートウェイAPIからローソク足を取得するHistoryProvider実装です。
type Client struct {
	cfg    Config
	client *http.Client
}

// ClientがHistoryProviderを実装していることをコンパイル時に検証します。
var _ usecase.HistoryProvider = (*Client)(nil)

// NewClient は指定された設定とHTTPクライアントでClientの新しいインスタンスを生成します。
func NewClient(cfg Config, client *http.Client) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, client: client}
}

// HistoryByOffset はゲートウェイのオフセット取得エンドポイントを呼び出します。
func (c *Client) HistoryByOffset(ctx context.Context, q entity.HistoryQuery) ([]entity.Candlestick, error) {
	v := url.Values{}
	// クエリパラメータを追加
	v.Set("period", q.Period.String())
	v.Set("adjust_type", q.AdjustType.String())
	v.Set("include_overnight", strconv.FormatBool(q.IncludeOvernight))
	v.Set("time", q.ReferenceTime.UTC().Format(time.RFC3339))
	v.Set("count", strconv.Itoa(q.Count))
	if q.TradeSessions != entity.TradeSessionsUnspecified {
		v.Set("trade_sessions", q.TradeSessions.String())
	}
	v.Set("direction", q.Direction.String())

	u := fmt.Sprintf("%s/candlesticks/%s/history/offset?%s", c.cfg.BaseURL, url.PathEscape(q.Symbol), v.Encode())

	res, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, decodeError(res)
	}

	// JSONレスポンスをDTOにデコード
	var body dto.HistoryResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}

	out := make([]entity.Candlestick, 0, len(body.Candlesticks))
	for _, r := range body.Candlesticks {
		session := entity.SessionIntraday
		if r.TradeSession != "" {
			session, err = entity.ParseTradeSession(r.TradeSession)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, entity.Candlestick{
			Close:        r.Close,
			Open:         r.Open,
			Low:          r.Low,
			High:         r.High,
			Volume:       r.Volume,
			Turnover:     r.Turnover,
			Timestamp:    r.Timestamp,
			TradeSession: session,
		})
	}
	return out, nil
}

// Ping はゲートウェイの /healthz が応答することを確認します。
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.get(ctx, c.cfg.BaseURL+"/healthz")
	if err != nil {
		return err
	}
	defer func() {
		_ = res.Body.Close()
	}()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway healthz returned %d", res.StatusCode)
	}
	return nil
}

func (c *Client) get(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	}
	return c.client.Do(req)
}

// statusClientClosedRequest はサーバー側でリクエストがキャンセルされたことを示します。
const statusClientClosedRequest = 499

// decodeError はエラーレスポンスの {"error": ..., "code": ...} をProviderErrorに変換します。
// 504と499はタイムアウト・キャンセルとして扱い、プロバイダエラーとは区別します。
func decodeError(res *http.Response) error {
	switch res.StatusCode {
	case http.StatusGatewayTimeout:
		return usecase.ErrTimeout
	case statusClientClosedRequest:
		return usecase.ErrCancelled
	}

	raw, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	msg := gjson.GetBytes(raw, "error").String()
	if msg == "" {
		msg = fmt.Sprintf("gateway http %d", res.StatusCode)
	}
	code := res.StatusCode
	if v := gjson.GetBytes(raw, "code"); v.Exists() {
		code = int(v.Int())
	}
	return &usecase.ProviderError{Code: code, Message: msg}
}
