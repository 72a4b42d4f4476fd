package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/shubh389/College-ti/pkg/errors"
)

var (
	ErrSourceTooLarge  = errors.New("打卡表超出大小限制")
	ErrUnexpectedReply = errors.New("打卡表下载返回非 200 状态")
	ErrNoSource        = errors.New("未配置打卡表来源")
)

// Cache 字节缓存（由 pkg/redis.Client 实现）
type Cache interface {
	GetBytes(ctx context.Context, key string) ([]byte, bool, error)
	SetBytes(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// FetcherConfig 获取参数
type FetcherConfig struct {
	Timeout  time.Duration
	MaxBytes int64
	CacheTTL time.Duration
}

// Fetcher 从 HTTP(S) 地址或本地路径读取打卡表原始字节
type Fetcher struct {
	client *http.Client
	cache  Cache
	cfg    FetcherConfig
	logger *zap.Logger
}

// NewFetcher 创建 Fetcher；cache 可为 nil
func NewFetcher(cfg FetcherConfig, cache Cache, logger *zap.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 10 << 20
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		client: &http.Client{Timeout: cfg.Timeout},
		cache:  cache,
		cfg:    cfg,
		logger: logger,
	}
}

// Fetch 读取来源；远程来源优先查缓存，缓存故障只记录日志
func (f *Fetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrIngestionFailure, ErrNoSource)
	}
	if !isRemote(location) {
		return f.readFile(location)
	}

	if f.cache != nil {
		data, ok, err := f.cache.GetBytes(ctx, location)
		switch {
		case err != nil:
			f.logger.Warn("读取打卡表缓存失败", zap.String("source", location), zap.Error(err))
		case ok:
			f.logger.Debug("命中打卡表缓存", zap.String("source", location), zap.Int("bytes", len(data)))
			return data, nil
		}
	}

	data, err := f.download(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrIngestionFailure, err)
	}

	if f.cache != nil {
		if err := f.cache.SetBytes(ctx, location, data, f.cfg.CacheTTL); err != nil {
			f.logger.Warn("写入打卡表缓存失败", zap.String("source", location), zap.Error(err))
		}
	}
	return data, nil
}

func (f *Fetcher) download(ctx context.Context, location string) ([]byte, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedReply, resp.StatusCode)
	}
	data, err := readLimited(resp.Body, f.cfg.MaxBytes)
	if err != nil {
		return nil, err
	}

	f.logger.Info("打卡表下载完成",
		zap.String("source", location),
		zap.Int("bytes", len(data)),
		zap.Duration("latency", time.Since(start)),
	)
	return data, nil
}

func (f *Fetcher) readFile(path string) ([]byte, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrIngestionFailure, err)
	}
	defer fh.Close()

	data, err := readLimited(fh, f.cfg.MaxBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrIngestionFailure, err)
	}
	return data, nil
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrSourceTooLarge
	}
	return data, nil
}

func isRemote(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
