package scripting

import (
	"context"
	"fmt"

	"github.com/dop251/goja"

	"github.com/wudi/pubkit/observability"
	"github.com/wudi/pubkit/pub"
)

type GojaEngine struct {
	logger observability.Logger
}

func NewEngine() *GojaEngine {
	return &GojaEngine{logger: observability.NopLogger{}}
}

func NewEngineWithLogger(l observability.Logger) *GojaEngine {
	return &GojaEngine{logger: l}
}

func (e *GojaEngine) Transform(ctx context.Context, script string) (pub.Transform, error) {
	prog, err := goja.Compile("transform.js", script, true)
	if err != nil {
		return nil, fmt.Errorf("scripting: compile transform: %w", err)
	}
	return func(b *pub.Builder) {
		// Transforms are total over the builder; a failing script is logged
		// and leaves the builder as the script left it.
		if err := e.run(ctx, prog, b); err != nil {
			e.logger.Error("scripting: transform failed", observability.Error("cause", err))
		}
	}, nil
}

func (e *GojaEngine) run(ctx context.Context, prog *goja.Program, b *pub.Builder) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	vm := goja.New()
	if err := registerPublication(vm, b); err != nil {
		return err
	}

	done := make(chan struct{})
	defer close(done)
	defer vm.ClearInterrupt()

	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	_, err := vm.RunProgram(prog)
	if err != nil {
		if interruptedErr, ok := err.(*goja.InterruptedError); ok {
			if cause := interruptedErr.Unwrap(); cause != nil {
				return cause
			}
			return context.Canceled
		}
		return err
	}
	return nil
}

func registerPublication(vm *goja.Runtime, b *pub.Builder) error {
	obj := vm.NewObject()
	accessors := []struct {
		name string
		get  func() string
		set  func(string)
	}{
		{"title",
			func() string { return b.Manifest.Metadata.Title },
			func(v string) { b.Manifest.Metadata.Title = v }},
		{"identifier",
			func() string { return b.Manifest.Metadata.Identifier },
			func(v string) { b.Manifest.Metadata.Identifier = v }},
		{"language",
			func() string { return b.Manifest.Metadata.Language },
			func(v string) { b.Manifest.Metadata.Language = v }},
	}
	for _, a := range accessors {
		get, set := a.get, a.set
		err := obj.DefineAccessorProperty(a.name,
			vm.ToValue(func(goja.FunctionCall) goja.Value {
				return vm.ToValue(get())
			}),
			vm.ToValue(func(call goja.FunctionCall) goja.Value {
				if len(call.Arguments) > 0 {
					set(call.Arguments[0].String())
				}
				return goja.Undefined()
			}),
			goja.FLAG_FALSE, goja.FLAG_TRUE)
		if err != nil {
			return err
		}
	}
	if err := obj.Set("pageCount", len(b.Manifest.ReadingOrder)); err != nil {
		return err
	}
	return vm.Set("publication", obj)
}
