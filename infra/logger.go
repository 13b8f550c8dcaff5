package infra

import "go.uber.org/zap"

// NewLogger 本番環境では JSON、それ以外は開発向けのコンソール出力
func NewLogger(cfg Config) (*zap.Logger, error) {
	if cfg.IsProd() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
