// Package scripting hosts gopher-lua VMs for scripted control logic.
package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// ErrNoFunction is returned by Call when the script does not define fn.
var ErrNoFunction = errors.New("scripting: function not defined")

// ErrUnsupportedAPI is returned when a script's MIN_API_VERSION is newer
// than APIVersion.
var ErrUnsupportedAPI = errors.New("scripting: unsupported api version")

// APIVersion is exposed to scripts as the API_VERSION global.
const APIVersion = 1

// Engine wraps a single gopher-lua VM. Single-goroutine access only: the
// owning controller drives it from the simulation loop.
type Engine struct {
	vm   *lua.LState
	path string
	log  *zap.Logger
}

// NewEngine creates a VM, loads every .lua file under libDir (if it exists)
// and then the script at path.
func NewEngine(libDir, path string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(APIVersion))

	e := &Engine{vm: vm, path: path, log: log}

	if libDir != "" {
		if err := e.loadDir(libDir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load lib scripts: %w", err)
		}
	}
	if err := vm.DoFile(path); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if need, ok := e.Global("MIN_API_VERSION").(lua.LNumber); ok && int(need) > APIVersion {
		vm.Close()
		return nil, fmt.Errorf("%s: %w: needs %d, have %d", path, ErrUnsupportedAPI, int(need), APIVersion)
	}
	log.Debug("loaded lua script", zap.String("file", path))
	return e, nil
}

// loadDir loads all .lua files in a directory. A missing directory is not an error.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua library", zap.String("file", path))
	}
	return nil
}

// Has reports whether the script defines a global function fn.
func (e *Engine) Has(fn string) bool {
	_, ok := e.vm.GetGlobal(fn).(*lua.LFunction)
	return ok
}

// Call invokes the global function fn in protected mode.
func (e *Engine) Call(fn string, args ...lua.LValue) error {
	f, ok := e.vm.GetGlobal(fn).(*lua.LFunction)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoFunction, fn)
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      f,
		NRet:    0,
		Protect: true,
	}, args...); err != nil {
		return fmt.Errorf("lua %s in %s: %w", fn, filepath.Base(e.path), err)
	}
	return nil
}

// CallOptional is Call for hooks a script may leave out.
func (e *Engine) CallOptional(fn string, args ...lua.LValue) error {
	if !e.Has(fn) {
		return nil
	}
	return e.Call(fn, args...)
}

// NewTable returns an empty table owned by this VM.
func (e *Engine) NewTable() *lua.LTable { return e.vm.NewTable() }

// Table builds a table from Go values. Numbers, strings and bools are
// converted; other values are skipped.
func (e *Engine) Table(values map[string]any) *lua.LTable {
	t := e.vm.NewTable()
	for k, v := range values {
		switch x := v.(type) {
		case float64:
			t.RawSetString(k, lua.LNumber(x))
		case int:
			t.RawSetString(k, lua.LNumber(x))
		case string:
			t.RawSetString(k, lua.LString(x))
		case bool:
			t.RawSetString(k, lua.LBool(x))
		}
	}
	return t
}

// Func wraps a Go function for use inside a table.
func (e *Engine) Func(fn lua.LGFunction) *lua.LFunction {
	return e.vm.NewFunction(fn)
}

// Global returns the value of a global variable.
func (e *Engine) Global(name string) lua.LValue {
	return e.vm.GetGlobal(name)
}

// Close releases the VM.
func (e *Engine) Close() {
	e.vm.Close()
}
