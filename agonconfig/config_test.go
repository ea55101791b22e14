package agonconfig

import (
	"testing"

	"github.com/kestrelfmt/agon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadParsesFields(t *testing.T) {
	cfg, err := Load([]byte(`
format: rows
force: true
min_savings: 0.2
encoding: o200k_base
delimiter: "|"
ascii: true
cache:
  redis:
    addr: localhost:6379
    key_prefix: "agon:"
`))
	require.NoError(t, err)
	assert.Equal(t, "rows", cfg.Format)
	assert.True(t, cfg.Force)
	assert.Equal(t, 0.2, cfg.MinSavings)
	assert.Equal(t, "o200k_base", cfg.Encoding)
	assert.Equal(t, "|", cfg.Delimiter)
	assert.True(t, cfg.ASCII)
	require.NotNil(t, cfg.Cache)
	require.NotNil(t, cfg.Cache.Redis)
	assert.Equal(t, "localhost:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, "agon:", cfg.Cache.Redis.KeyPrefix)
}

func TestEncodeOptionsDefaultsFormatToAuto(t *testing.T) {
	cfg, err := Load([]byte(`min_savings: 0.3`))
	require.NoError(t, err)
	opts := cfg.EncodeOptions()
	assert.Equal(t, agon.FormatAuto, opts.Format)
	assert.Equal(t, 0.3, opts.MinSavings)
}

func TestEncodeOptionsHonorsExplicitFormat(t *testing.T) {
	cfg, err := Load([]byte(`format: columns`))
	require.NoError(t, err)
	opts := cfg.EncodeOptions()
	assert.Equal(t, agon.FormatColumns, opts.Format)
}

func TestLoadFileReturnsErrorForMissingFile(t *testing.T) {
	_, err := LoadFile("/nonexistent/agonconfig.yaml")
	assert.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	_, err := Load([]byte("format: [unterminated"))
	assert.Error(t, err)
}
