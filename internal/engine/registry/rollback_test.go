package registry_test

import (
	"bytes"
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/featreg/internal/adapters/logger"
	"go.trai.ch/featreg/internal/adapters/telemetry"
	"go.trai.ch/featreg/internal/core/domain"
	"go.trai.ch/featreg/internal/core/ports/mocks"
	"go.trai.ch/featreg/internal/engine/registry"
	"go.uber.org/mock/gomock"
)

func TestRollback_UnknownVersionLeavesHistoryUntouched(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newFixture(t, mocks.NewMockModuleResolver(ctrl), registry.RouteConfig{})
	f.reg.Register("mainMenu", "v1", newPlain("mainMenu", "v1"), nil)
	f.reg.Register("mainMenu", "v2", newPlain("mainMenu", "v2"), nil)
	require.NoError(t, f.reg.Rollback("mainMenu", "v1"))
	before := f.reg.History("mainMenu")

	err := f.reg.Rollback("mainMenu", "v99")
	require.ErrorIs(t, err, domain.ErrVersionNotFound)

	assert.Equal(t, before, f.reg.History("mainMenu"))
}

func TestRollback_UnknownModule(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newFixture(t, mocks.NewMockModuleResolver(ctrl), registry.RouteConfig{})

	err := f.reg.Rollback("ghost", "v1")
	require.ErrorIs(t, err, domain.ErrVersionNotFound)
	assert.Empty(t, f.reg.History("ghost"))
}

func TestRollback_RecordsIntentOnly(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		f := newFixture(t, mocks.NewMockModuleResolver(ctrl), registry.RouteConfig{})
		v3 := newPlain("mainMenu", "v3")
		f.reg.Register("mainMenu", "v1", newPlain("mainMenu", "v1"), nil)
		f.reg.Register("mainMenu", "v2", newPlain("mainMenu", "v2"), nil)
		f.reg.Register("mainMenu", "v3", v3, nil)

		start := time.Now()
		require.NoError(t, f.reg.Rollback("mainMenu", "v1"))
		time.Sleep(time.Second)
		require.NoError(t, f.reg.Rollback("mainMenu", "v2"))

		history := f.reg.History("mainMenu")
		require.Len(t, history, 2)
		assert.Equal(t, "v3", history[0].From)
		assert.Equal(t, "v1", history[0].To)
		assert.True(t, history[0].Timestamp.Equal(start))
		assert.Equal(t, "v3", history[1].From)
		assert.Equal(t, "v2", history[1].To)
		assert.True(t, history[1].Timestamp.Equal(start.Add(time.Second)))

		latest, err := f.reg.Load(t.Context(), "mainMenu", domain.LatestVersion)
		require.NoError(t, err)
		assert.Same(t, v3, latest)
		assert.Contains(t, f.logs.String(), "rollback recorded")
	})
}

func TestRollback_JournalFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	j := mocks.NewMockRollbackJournal(ctrl)
	reg := registry.New(mocks.NewMockModuleResolver(ctrl), j, telemetry.NewNoOp(), logger.Discard(), registry.RouteConfig{})
	reg.Register("mainMenu", "v1", newPlain("mainMenu", "v1"), nil)

	j.EXPECT().Append("mainMenu", gomock.Any()).Return(domain.ErrJournalWriteFailed)

	err := reg.Rollback("mainMenu", "v1")
	require.ErrorIs(t, err, domain.ErrJournalWriteFailed)
}

func TestHistory_JournalReadFailureYieldsEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	j := mocks.NewMockRollbackJournal(ctrl)
	var buf bytes.Buffer
	reg := registry.New(mocks.NewMockModuleResolver(ctrl), j, telemetry.NewNoOp(), logger.NewWithWriter(&buf), registry.RouteConfig{})

	j.EXPECT().History("mainMenu").Return(nil, errors.New("disk gone"))

	got := reg.History("mainMenu")
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Contains(t, buf.String(), "disk gone")
}

func TestShouldRollback(t *testing.T) {
	tests := []struct {
		name       string
		conditions any
		results    domain.TestResults
		want       bool
	}{
		{
			name:       "error rate above threshold",
			conditions: map[string]any{"errorRate": ">5%"},
			results:    domain.TestResults{"errorRate": 7},
			want:       true,
		},
		{
			name:       "error rate below threshold",
			conditions: map[string]any{"errorRate": ">5%"},
			results:    domain.TestResults{"errorRate": 3},
			want:       false,
		},
		{
			name:       "threshold itself does not trip a strict comparison",
			conditions: map[string]any{"errorRate": ">5%"},
			results:    domain.TestResults{"errorRate": 5},
			want:       false,
		},
		{
			name:       "second condition trips",
			conditions: map[string]string{"errorRate": ">5%", "testFailures": ">2"},
			results:    domain.TestResults{"errorRate": 1, "testFailures": 3},
			want:       true,
		},
		{
			name:       "failedTests satisfies testFailures",
			conditions: map[string]string{"testFailures": ">2"},
			results:    domain.TestResults{"failedTests": 4},
			want:       true,
		},
		{
			name:       "missing metric is ignored",
			conditions: map[string]string{"latency": ">200ms"},
			results:    domain.TestResults{"errorRate": 50},
			want:       false,
		},
		{
			name:       "no conditions",
			conditions: nil,
			results:    domain.TestResults{"errorRate": 99},
			want:       false,
		},
		{
			name:       "less-than operator",
			conditions: map[string]string{"coverage": "<80%"},
			results:    domain.TestResults{"coverage": 72.5},
			want:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			f := newFixture(t, mocks.NewMockModuleResolver(ctrl), registry.RouteConfig{})

			fields := map[string]any{}
			if tt.conditions != nil {
				fields[domain.RollbackConditionsField] = tt.conditions
			}
			f.reg.Register("pressurePanel", "v2", newPlain("pressurePanel", "v2"), fields)

			assert.Equal(t, tt.want, f.reg.ShouldRollback("pressurePanel", "v2", tt.results))
			assert.Equal(t, tt.want, f.reg.ShouldRollback("pressurePanel", domain.LatestVersion, tt.results))
		})
	}
}

func TestShouldRollback_UnknownModule(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newFixture(t, mocks.NewMockModuleResolver(ctrl), registry.RouteConfig{})

	assert.False(t, f.reg.ShouldRollback("ghost", "v1", domain.TestResults{"errorRate": 100}))
	assert.False(t, f.reg.ShouldRollback("ghost", domain.LatestVersion, domain.TestResults{"errorRate": 100}))
}
