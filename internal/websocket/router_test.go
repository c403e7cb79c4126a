// internal/websocket/router_test.go
package websocket

import (
	"fmt"
	"testing"
)

type fakeApp struct{}

func (a *fakeApp) Ping() string { return "pong" }

func (a *fakeApp) Add(x int, y int) int { return x + y }

func (a *fakeApp) Fail() error { return fmt.Errorf("boom") }

func (a *fakeApp) Divide(x float64, y float64) (float64, error) {
	if y == 0 {
		return 0, fmt.Errorf("divide by zero")
	}
	return x / y, nil
}

type point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (a *fakeApp) Norm(p point) float64 { return p.X*p.X + p.Y*p.Y }

func TestRouter_Call(t *testing.T) {
	r := NewRouter(&fakeApp{})

	result, err := r.Call("Ping", nil)
	if err != nil || result != "pong" {
		t.Errorf("Ping: %v %v", result, err)
	}

	result, err = r.Call("Add", []interface{}{float64(2), float64(3)})
	if err != nil || result != 5 {
		t.Errorf("Add: %v %v", result, err)
	}
}

func TestRouter_UnknownMethod(t *testing.T) {
	r := NewRouter(&fakeApp{})

	if _, err := r.Call("Nope", nil); err == nil {
		t.Error("Unknown method accepted")
	}
}

func TestRouter_WrongArity(t *testing.T) {
	r := NewRouter(&fakeApp{})

	if _, err := r.Call("Add", []interface{}{float64(1)}); err == nil {
		t.Error("Wrong arity accepted")
	}
}

func TestRouter_ErrorReturn(t *testing.T) {
	r := NewRouter(&fakeApp{})

	if _, err := r.Call("Fail", nil); err == nil || err.Error() != "boom" {
		t.Errorf("Expected boom, got %v", err)
	}

	result, err := r.Call("Divide", []interface{}{float64(6), float64(2)})
	if err != nil || result != 3.0 {
		t.Errorf("Divide: %v %v", result, err)
	}
	if _, err := r.Call("Divide", []interface{}{float64(1), float64(0)}); err == nil {
		t.Error("Divide by zero should error")
	}
}

func TestRouter_StructParam(t *testing.T) {
	r := NewRouter(&fakeApp{})

	// JSON objects arrive as map[string]interface{}.
	result, err := r.Call("Norm", []interface{}{
		map[string]interface{}{"x": float64(3), "y": float64(4)},
	})
	if err != nil || result != 25.0 {
		t.Errorf("Norm: %v %v", result, err)
	}
}
