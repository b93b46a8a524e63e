package logger_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/featreg/internal/adapters/logger"
	"go.trai.ch/zerr"
)

func TestCollectErrorEntries(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantMessages []string
		wantMetadata []map[string]any
	}{
		{
			name:         "single standard error",
			err:          errors.New("simple error"),
			wantMessages: []string{"simple error"},
			wantMetadata: []map[string]any{nil},
		},
		{
			name:         "zerr wrapped chain",
			err:          zerr.Wrap(zerr.Wrap(errors.New("root cause"), "middle layer"), "outer layer"),
			wantMessages: []string{"outer layer", "middle layer", "root cause"},
			wantMetadata: []map[string]any{{}, {}, nil},
		},
		{
			name:         "zerr with metadata",
			err:          zerr.With(zerr.With(zerr.New("base error"), "key1", "value1"), "key2", 42),
			wantMessages: []string{"base error"},
			wantMetadata: []map[string]any{{"key1": "value1", "key2": 42}},
		},
		{
			name:         "metadata-only link moves onto the next message",
			err:          zerr.With(zerr.Wrap(zerr.New("version not found"), ""), "module", "mainMenu"),
			wantMessages: []string{"version not found"},
			wantMetadata: []map[string]any{{"module": "mainMenu"}},
		},
		{
			name:         "trailing metadata-only link",
			err:          zerr.Wrap(zerr.With(zerr.Wrap(errors.New("disk"), ""), "path", "/x"), "read failed"),
			wantMessages: []string{"read failed", "disk"},
			wantMetadata: []map[string]any{{}, {"path": "/x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := logger.CollectErrorEntries(tt.err)

			var (
				messages []string
				metadata []map[string]any
			)
			for _, e := range entries {
				messages = append(messages, e.Message())
				metadata = append(metadata, e.Metadata())
			}
			assert.Equal(t, tt.wantMessages, messages)
			assert.Equal(t, tt.wantMetadata, metadata)
		})
	}
}

func TestFormatErrorEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []logger.ErrorEntry
		want    string
	}{
		{
			name:    "single entry",
			entries: []logger.ErrorEntry{logger.NewEntry("boom", nil)},
			want:    "Error: boom",
		},
		{
			name: "causes with metadata",
			entries: []logger.ErrorEntry{
				logger.NewEntry("outer", map[string]any{"b": 2, "a": 1}),
				logger.NewEntry("inner", nil),
			},
			want: "Error: outer a=1 b=2\n\n  Caused by:\n    → inner",
		},
		{
			name: "multiline messages",
			entries: []logger.ErrorEntry{
				logger.NewEntry("first\nsecond", nil),
				logger.NewEntry("cause\ndetail", nil),
			},
			want: "Error: first\n       second\n\n  Caused by:\n    → cause\n      detail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.FormatErrorEntries(tt.entries))
		})
	}
}
