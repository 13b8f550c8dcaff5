// Package events 在庫変動イベントを他サービスへ通知する
package events

import (
	"context"
	"time"
)

const (
	KeySweetPurchased = "sweet.purchased"
	KeySweetRestocked = "sweet.restocked"
	KeySweetLowStock  = "sweet.low_stock"
)

// StockChanged 在庫イベント共通のペイロード
type StockChanged struct {
	SweetID  string    `json:"sweet_id"`
	Name     string    `json:"name"`
	Delta    int       `json:"delta"`
	Quantity int       `json:"quantity"`
	At       time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, key string, v any) error
	Close() error
}

// NopPublisher ブローカー未設定時に使う
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
func (NopPublisher) Close() error                             { return nil }
