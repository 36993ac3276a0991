// internal/oracle/multi_test.go
package oracle

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubSource struct {
	reading *Reading
	err     error
}

func (s *stubSource) Read(_ context.Context, _ string) (*Reading, error) {
	return s.reading, s.err
}

func TestMultiOracleTakesMaxPerCounter(t *testing.T) {
	multi := NewMultiOracle([]Oracle{
		&stubSource{reading: &Reading{HoldersCount: 600, VolumeUsd: 10000}},
		&stubSource{reading: &Reading{HoldersCount: 400, VolumeUsd: 30000}},
	}, zaptest.NewLogger(t))

	reading, err := multi.Read(context.Background(), "pool-1")
	require.NoError(t, err)
	assert.Equal(t, int64(600), reading.HoldersCount)
	assert.Equal(t, 30000.0, reading.VolumeUsd)
}

func TestMultiOracleToleratesPartialFailure(t *testing.T) {
	multi := NewMultiOracle([]Oracle{
		&stubSource{err: fmt.Errorf("source down")},
		&stubSource{reading: &Reading{HoldersCount: 100, VolumeUsd: 500}},
	}, zaptest.NewLogger(t))

	reading, err := multi.Read(context.Background(), "pool-1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), reading.HoldersCount)
}

func TestMultiOracleAllSourcesFail(t *testing.T) {
	multi := NewMultiOracle([]Oracle{
		&stubSource{err: fmt.Errorf("down 1")},
		&stubSource{err: fmt.Errorf("down 2")},
	}, zaptest.NewLogger(t))

	_, err := multi.Read(context.Background(), "pool-1")
	assert.Error(t, err)
}

func TestMultiOracleNoSources(t *testing.T) {
	multi := NewMultiOracle(nil, zaptest.NewLogger(t))
	_, err := multi.Read(context.Background(), "pool-1")
	assert.ErrorIs(t, err, ErrNoSources)
}
