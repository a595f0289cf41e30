package infra

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/jinzhu/gorm"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pyama86/device-query/domain/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS queries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	device TEXT NOT NULL,
	message TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_queries_created_at ON queries(created_at);
`

type DataBase struct {
	db *gorm.DB
}

func dbPath() string {
	dbpath := "./db/queries.sqlite"
	if os.Getenv("DB_PATH") != "" {
		dbpath = os.Getenv("DB_PATH")
	}
	if isMemoryPath(dbpath) {
		return dbpath
	}
	if !path.IsAbs(dbpath) {
		dbpath = path.Join(os.Getenv("PWD"), dbpath)
	}
	return dbpath
}

func isMemoryPath(p string) bool {
	return p == ":memory:" || strings.HasPrefix(p, "file:")
}

func NewDataBase(dbpath string) (*DataBase, error) {
	if !isMemoryPath(dbpath) {
		if err := os.MkdirAll(path.Dir(dbpath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := gorm.Open("sqlite3", dbpath)
	if err != nil {
		return nil, err
	}
	// sqlite は書き込みが一本なので接続も一本にして直列化する
	db.DB().SetMaxOpenConns(1)
	return &DataBase{db: db}, nil
}

func (d *DataBase) EnsureSchema(_ context.Context) error {
	if err := d.db.Exec(schema).Error; err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (d *DataBase) InsertQuery(_ context.Context, query *model.Query) error {
	query.ID = 0
	query.CreatedAt = model.FormatTime(timeNow())
	return d.db.Create(query).Error
}

func (d *DataBase) ListQueries(_ context.Context, limit int) ([]model.Query, error) {
	queries := []model.Query{}
	err := d.db.Order("created_at desc").Order("id desc").Limit(ClampLimit(limit)).Find(&queries).Error
	return queries, err
}

func (d *DataBase) CountQueries(_ context.Context) (int, error) {
	var count int
	err := d.db.Model(&model.Query{}).Count(&count).Error
	return count, err
}

func (d *DataBase) Close() error {
	return d.db.Close()
}
