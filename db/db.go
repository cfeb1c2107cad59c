package db

import "context"

type DBType string

const (
	Postgres DBType = "postgres"
	Mongo    DBType = "mongo"
)

// DB is the lifecycle contract both backends satisfy.
type DB interface {
	Connect() error
	Disconnect() error
	GetContext() context.Context
}
