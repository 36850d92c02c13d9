package clients

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spacesedan/impactwatch/config"
	"github.com/spacesedan/impactwatch/internal/models"
	"github.com/valkey-io/valkey-go"
)

const VALKEY_PREDICTION_PREFIX = "impactwatch:prediction:"

// ValkeyClient caches predictions. While Healthy is false every lookup is a
// miss and every store is skipped, so the service keeps answering from the
// models.
type ValkeyClient struct {
	Client  valkey.Client
	Healthy atomic.Bool
	ttl     time.Duration
}

func NewValkeyClient(cfg config.CacheConfig) (*ValkeyClient, error) {
	opts := valkey.ClientOption{
		InitAddress: []string{
			cfg.Addr,
		},
		Password:         cfg.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}

	if cfg.TLS {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	vc := &ValkeyClient{Client: client, ttl: cfg.TTL}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()

	if err := vc.Ping(ctx); err != nil {
		// the health monitor flips this back once valkey answers
		slog.Warn("[ValkeyClient] Valkey is not reachable yet, cache disabled",
			slog.String("error", err.Error()))
		return vc, nil
	}

	vc.Healthy.Store(true)
	slog.Info("[ValkeyClient] Successfully connected to valkey")
	return vc, nil
}

func (vc *ValkeyClient) Close() {
	if vc.Client != nil {
		vc.Client.Close()
	}
}

func (vc *ValkeyClient) Ping(ctx context.Context) error {
	return vc.Client.Do(ctx, vc.Client.B().Ping().Build()).Error()
}

func (vc *ValkeyClient) GetPrediction(ctx context.Context, key string) (models.PredictionResult, bool, error) {
	if !vc.Healthy.Load() {
		return models.PredictionResult{}, false, nil
	}

	res := vc.DoWithRetry(ctx, vc.Client.B().Get().Key(PredictionKey(key)).Build(), 2)
	data, err := res.AsBytes()
	if valkey.IsValkeyNil(err) {
		return models.PredictionResult{}, false, nil
	}
	if err != nil {
		if isConnectionError(err) {
			vc.Healthy.Store(false)
		}
		return models.PredictionResult{}, false, err
	}

	prediction, err := DecodePrediction(data)
	if err != nil {
		return models.PredictionResult{}, false, err
	}
	return prediction, true, nil
}

func (vc *ValkeyClient) SetPrediction(ctx context.Context, key string, prediction models.PredictionResult) error {
	if !vc.Healthy.Load() {
		return nil
	}

	data, err := EncodePrediction(prediction)
	if err != nil {
		return err
	}

	cmd := vc.Client.B().Set().Key(PredictionKey(key)).Value(valkey.BinaryString(data)).
		ExSeconds(int64(vc.ttl / time.Second)).Build()
	if err := vc.DoWithRetry(ctx, cmd, 2).Error(); err != nil {
		if isConnectionError(err) {
			vc.Healthy.Store(false)
		}
		return err
	}
	return nil
}

func (vc *ValkeyClient) DoWithRetry(ctx context.Context, completed valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		result = vc.Client.Do(ctx, completed)
		if err := result.Error(); err == nil || valkey.IsValkeyNil(err) {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", result.Error().Error()))

		select {
		case <-ctx.Done():
			return result
		case <-time.After(50 * time.Millisecond):
		}
	}

	return result
}

// PredictionKey namespaces a "<fingerprint>:<cleaned text>" key. Raw texts
// that clean to the same string share an entry; Text is restored by the
// caller.
func PredictionKey(key string) string {
	return VALKEY_PREDICTION_PREFIX + key
}

// EncodePrediction drops the raw text before storing.
func EncodePrediction(p models.PredictionResult) ([]byte, error) {
	p.Text = ""
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to encode prediction: %w", err)
	}
	return data, nil
}

func DecodePrediction(data []byte) (models.PredictionResult, error) {
	var p models.PredictionResult
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("[ValkeyClient] failed to decode prediction: %w", err)
	}
	return p, nil
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
