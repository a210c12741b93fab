package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestDefaultConf(t *testing.T) {
	conf := SetDefaults()
	assert.Equal(t, "stderr", conf.Output)
	assert.Equal(t, "INFO", conf.Level)
	assert.Equal(t, 7, conf.KeepDays)
	assert.NoError(t, conf.Validate())
}

func TestConfValidate(t *testing.T) {
	tests := []struct {
		name    string
		conf    *Conf
		wantErr bool
	}{
		{"stdout", &Conf{Output: "stdout", Level: "INFO"}, false},
		{"empty output", &Conf{}, false},
		{"file", &Conf{Output: "file", Path: "/tmp/logs", RotateSize: 10, RotateNum: 2, KeepDays: 1}, false},
		{"file without path", &Conf{Output: "file"}, true},
		{"unknown output", &Conf{Output: "kafka"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conf.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateFillsRotation(t *testing.T) {
	conf := &Conf{Output: "file", Path: "/tmp/logs"}
	require.NoError(t, conf.Validate())
	assert.Equal(t, "dawgc.log", conf.Filename)
	assert.Equal(t, 100, conf.RotateSize)
	assert.Equal(t, 10, conf.RotateNum)
	assert.Equal(t, 7, conf.KeepDays)
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" INFO ":  zapcore.InfoLevel,
		"Warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"FATAL":   zapcore.FatalLevel,
		"verbose": zapcore.InfoLevel,
	}
	for level, want := range tests {
		assert.Equal(t, want, parseLogLevel(level), level)
	}
}

func TestNewLogFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLog(&Conf{Output: "file", Path: dir, Filename: "test.log", Level: "debug"})
	require.NoError(t, err)

	logger.Info("compiled", zap.String("dictionary", "fr.dic"))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(filepath.Join(dir, "test.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "INFO")
	assert.Contains(t, string(data), "compiled")
	assert.Contains(t, string(data), "fr.dic")
}

func TestNewLogInvalid(t *testing.T) {
	_, err := NewLog(&Conf{Output: "file"})
	require.Error(t, err)
}
