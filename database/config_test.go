/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
connection:
  type: postgresql
  host: db.internal
  port: 5432
  username: app
  password: secret
  dbname: offers
  max_open_conns: 20
  slow_query_time: 500ms
session:
  version_column: row_version
log_level: debug
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "db.yaml", sampleConfig)

	cfg, err := LoadConfig(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, TypePostgres, cfg.Connection.Type)
	assert.Equal(t, "db.internal", cfg.Connection.Host)
	assert.Equal(t, 5432, cfg.Connection.Port)
	assert.Equal(t, 20, cfg.Connection.MaxOpenConns)
	assert.Equal(t, 10, cfg.Connection.MaxIdleConns, "defaults survive partial files")
	assert.Equal(t, 500*time.Millisecond, cfg.Connection.SlowQueryTime)
	assert.Equal(t, "row_version", cfg.Session.VersionColumn)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "db.yaml", sampleConfig)
	envFile := writeFile(t, dir, "test.env", "DB_NAME=from_dotenv\nDB_PORT=6543\n")

	t.Setenv("DB_HOST", "override.internal")
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_VERSION_COLUMN", "lock_version")
	// godotenv.Load sets variables for the whole process
	t.Setenv("DB_NAME", "")
	t.Setenv("DB_PORT", "")
	require.NoError(t, os.Unsetenv("DB_NAME"))
	require.NoError(t, os.Unsetenv("DB_PORT"))

	cfg, err := LoadConfig(path, envFile)
	require.NoError(t, err)

	assert.Equal(t, "override.internal", cfg.Connection.Host)
	assert.Equal(t, 7, cfg.Connection.MaxOpenConns)
	assert.Equal(t, "from_dotenv", cfg.Connection.DBName)
	assert.Equal(t, 6543, cfg.Connection.Port)
	assert.Equal(t, "lock_version", cfg.Session.VersionColumn)
}

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadConfig("", filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.Equal(t, TypeSQLite, cfg.Connection.Type)
	assert.Equal(t, "version", cfg.Session.VersionColumn)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	noEnv := filepath.Join(dir, "none.env")

	_, err := LoadConfig(filepath.Join(dir, "absent.yaml"), noEnv)
	assert.Error(t, err)

	bad := writeFile(t, dir, "bad.yaml", "connection: [unterminated")
	_, err = LoadConfig(bad, noEnv)
	assert.Error(t, err)

	oracle := writeFile(t, dir, "oracle.yaml", "connection:\n  type: oracle\n  host: h\n")
	_, err = LoadConfig(oracle, noEnv)
	assert.ErrorContains(t, err, "unsupported database type")

	noHost := writeFile(t, dir, "nohost.yaml", "connection:\n  type: mysql\n")
	_, err = LoadConfig(noHost, noEnv)
	assert.ErrorContains(t, err, "host is required")
}
