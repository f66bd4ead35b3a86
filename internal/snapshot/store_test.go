package snapshot_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vocabuddy/progress/internal/snapshot"
	"github.com/vocabuddy/progress/internal/testutil/mocks"
)

func TestLoad_Missing(t *testing.T) {
	local := new(mocks.MockLocalStore)
	local.On("Get", mock.Anything, "words").Return(nil, false, nil)

	var out payload
	found, err := snapshot.Load(context.Background(), local, "words", snapshot.Schema{Version: 1}, &out)

	require.NoError(t, err)
	assert.False(t, found)
}

func TestSaveThenLoad(t *testing.T) {
	local := new(mocks.MockLocalStore)
	schema := snapshot.Schema{Version: 1}

	var written []byte
	local.On("Set", mock.Anything, "games", mock.Anything).
		Run(func(args mock.Arguments) { written = args.Get(2).([]byte) }).
		Return(nil)
	require.NoError(t, snapshot.Save(context.Background(), local, "games", schema, payload{Name: "g", Count: 2}))

	local.On("Get", mock.Anything, "games").Return(written, true, nil)

	var out payload
	found, err := snapshot.Load(context.Background(), local, "games", schema, &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{Name: "g", Count: 2}, out)
}

func TestLoad_ReadError(t *testing.T) {
	local := new(mocks.MockLocalStore)
	local.On("Get", mock.Anything, "calendar").Return(nil, false, errors.New("disk gone"))

	var out payload
	_, err := snapshot.Load(context.Background(), local, "calendar", snapshot.Schema{Version: 1}, &out)
	assert.ErrorContains(t, err, "disk gone")
}
