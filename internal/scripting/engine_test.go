package scripting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

func TestEngineCalls(t *testing.T) {
	e, err := NewEngine("", "testdata/counter.lua", zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	assert.True(t, e.Has("init"))
	assert.False(t, e.Has("reset"))
	assert.NoError(t, e.CallOptional("reset"))

	require.NoError(t, e.Call("init", e.Table(map[string]any{"gain": 2.0})))

	var recorded []float64
	robot := e.NewTable()
	robot.RawSetString("record", e.Func(func(L *lua.LState) int {
		recorded = append(recorded, float64(L.CheckNumber(1)))
		return 0
	}))

	require.NoError(t, e.Call("control_step", robot))
	require.NoError(t, e.Call("control_step", robot))
	assert.Equal(t, []float64{2, 4}, recorded)
	assert.Equal(t, lua.LNumber(2), e.Global("steps"))
}

func TestEngineMissingFunction(t *testing.T) {
	e, err := NewEngine("", "testdata/counter.lua", zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	assert.ErrorIs(t, e.Call("destroy"), ErrNoFunction)
}

func TestEngineScriptError(t *testing.T) {
	e, err := NewEngine("", "testdata/broken.lua", zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	err = e.Call("control_step", e.NewTable())
	assert.ErrorContains(t, err, "boom")
	assert.ErrorContains(t, err, "lua control_step in broken.lua")
}

func TestEngineRejectsNewerAPI(t *testing.T) {
	_, err := NewEngine("", "testdata/future.lua", zap.NewNop())
	assert.ErrorIs(t, err, ErrUnsupportedAPI)

	e, err := NewEngine("", "testdata/counter.lua", zap.NewNop())
	require.NoError(t, err)
	defer e.Close()
	assert.Equal(t, lua.LNumber(APIVersion), e.Global("API_VERSION"))
}

func TestEngineMissingFile(t *testing.T) {
	_, err := NewEngine("", "testdata/nope.lua", zap.NewNop())
	assert.Error(t, err)
}

func TestEngineLibDir(t *testing.T) {
	e, err := NewEngine("testdata/lib", "testdata/uses_lib.lua", zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.Call("init", e.NewTable()))
	assert.Equal(t, lua.LNumber(42), e.Global("answer"))
}
