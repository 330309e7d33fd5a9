package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"TEXT_SOURCE", "MAX_DOCUMENT_SIZE_MB", "GOOGLE_CLOUD_PROJECT", "GOOGLE_CLOUD_LOCATION",
		"DOCUMENT_AI_PROCESSOR_ID", "DOCUMENT_AI_PROCESSOR_VERSION", "REKAP_OUTPUT", "REKAP_COLUMNS",
		"BATCH_WORKERS", "GOOGLE_SHEET_URL", "GOOGLE_SHEET_WORKSHEET", "HTTP_ADDR",
		"LOG_LEVEL", "LOG_FORMAT", "LOG_TIME_FORMAT", "LOG_OUTPUT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, int64(20*1024*1024), cfg.MaxDocumentSizeBytes())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEXT_SOURCE", "DocumentAI")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "proj")
	t.Setenv("DOCUMENT_AI_PROCESSOR_ID", "abc123")
	t.Setenv("BATCH_WORKERS", "8")
	t.Setenv("REKAP_COLUMNS", "No,Nama PKP")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, SourceDocumentAI, cfg.TextSource)
	assert.Equal(t, 8, cfg.BatchWorkers)
	assert.Equal(t, "No,Nama PKP", cfg.RekapColumns)

	lc := cfg.GetLoggerConfig()
	assert.Equal(t, "info", lc.Level)
	assert.Equal(t, "stderr", lc.Output)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown source", map[string]string{"TEXT_SOURCE": "tesseract"}, "TEXT_SOURCE"},
		{"documentai without project", map[string]string{"TEXT_SOURCE": "documentai"}, "GOOGLE_CLOUD_PROJECT"},
		{"documentai without processor", map[string]string{"TEXT_SOURCE": "documentai", "GOOGLE_CLOUD_PROJECT": "p"}, "DOCUMENT_AI_PROCESSOR_ID"},
		{"bad workers", map[string]string{"BATCH_WORKERS": "many"}, "BATCH_WORKERS"},
		{"zero size", map[string]string{"MAX_DOCUMENT_SIZE_MB": "0"}, "MAX_DOCUMENT_SIZE_MB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
