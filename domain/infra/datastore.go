package infra

import (
	"context"
	"os"
	"time"

	"github.com/pyama86/device-query/domain/model"
)

const (
	DefaultListLimit = 100
	MinListLimit     = 1
	MaxListLimit     = 500
)

//go:generate mockgen -source=datastore.go -destination=mock_datastore.go -package=infra Datastore

type Datastore interface {
	// テーブルが無ければ作る。何度呼んでもよい
	EnsureSchema(context.Context) error
	// 問い合わせを保存し、ID と created_at を埋める
	InsertQuery(context.Context, *model.Query) error
	// 新しい順に最大 limit 件の問い合わせを取得する
	ListQueries(context.Context, int) ([]model.Query, error)
	// 保存済みの件数
	CountQueries(context.Context) (int, error)
	Close() error
}

// NewDatastore picks the backend from DB_DRIVER.
func NewDatastore() (Datastore, error) {
	if os.Getenv("DB_DRIVER") == "dynamodb" {
		return NewDynamoDB()
	}
	return NewDataBase(dbPath())
}

// ClampLimit bounds a requested list size to [MinListLimit, MaxListLimit].
func ClampLimit(limit int) int {
	if limit < MinListLimit {
		return MinListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

var timeNow = func() time.Time {
	return time.Now()
}
