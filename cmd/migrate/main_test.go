package main

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appmigrations "github.com/wolfman30/travel-ai-concierge/migrations"
	"github.com/wolfman30/travel-ai-concierge/pkg/logging"
)

func TestRunRequiresDatabaseURL(t *testing.T) {
	err := run("  ", nil, logging.New("error"))
	assert.EqualError(t, err, "DATABASE_URL is required")
}

func TestIntArg(t *testing.T) {
	n, err := intArg([]string{"down", "2"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = intArg([]string{"force"})
	assert.Error(t, err)

	_, err = intArg([]string{"down", "-1"})
	assert.Error(t, err)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(appmigrations.FS, "*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(appmigrations.FS, "*.down.sql")
	require.NoError(t, err)

	assert.Len(t, ups, 3)
	assert.Len(t, downs, len(ups))
}
