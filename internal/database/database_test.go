package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestConnectSQLiteMigrates(t *testing.T) {
	db, err := Connect("sqlite", "file:database_test?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	require.True(t, db.Migrator().HasTable("interviews"))
	require.True(t, db.Migrator().HasTable("question_evaluations"))
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect("mysql", "dsn")
	require.Error(t, err)
}

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := ConnectRedis(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	_, err = ConnectRedis(context.Background(), "")
	require.Error(t, err)
}

func TestConnectNATSDisabled(t *testing.T) {
	conn, err := ConnectNATS("", "test")
	require.NoError(t, err)
	require.Nil(t, conn)
}
