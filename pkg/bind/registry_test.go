package bind_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-schemabind/pkg/bind"
	"github.com/goliatone/go-schemabind/pkg/native"
	"github.com/goliatone/go-schemabind/pkg/schema"
)

func TestRegistryResolvesNativeFallback(t *testing.T) {
	model := modelSchema(t)
	adapter, err := bind.NewRegistry().Resolve(model)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, ok := adapter.(*native.Adapter); !ok {
		t.Fatalf("adapter = %T, want *native.Adapter", adapter)
	}
	if adapter.Model().(*schema.Schema) != model {
		t.Fatal("adapter wraps the wrong schema")
	}
}

func TestRegistryNoAdapter(t *testing.T) {
	type plain struct{}
	_, err := bind.NewRegistry().Resolve(plain{})
	if !errors.Is(err, bind.ErrNoAdapter) {
		t.Fatalf("err = %v, want ErrNoAdapter", err)
	}
	if !strings.Contains(err.Error(), "plain") {
		t.Fatalf("err = %v, want the model type named", err)
	}
}

func TestRegistryLaterRegistrationWins(t *testing.T) {
	replacement := modelSchema(t)
	r := bind.NewRegistry()
	r.Register("custom",
		func(model any) bool { _, ok := model.(*schema.Schema); return ok },
		func(model any) (schema.ModelAdapter, error) { return native.New(replacement), nil },
	)

	adapter, err := r.Resolve(baseSchema(t))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if adapter.Model().(*schema.Schema) != replacement {
		t.Fatal("builtin fallback shadowed the later registration")
	}
}

func TestRegistryFactoryError(t *testing.T) {
	r := bind.NewRegistry()
	r.Register("broken",
		func(model any) bool { return true },
		func(model any) (schema.ModelAdapter, error) { return nil, errors.New("boom") },
	)
	_, err := r.Resolve(struct{}{})
	if err == nil || !strings.Contains(err.Error(), "broken adapter") {
		t.Fatalf("err = %v, want factory failure named", err)
	}
}

func TestRegistryIgnoresIncompleteRegistrations(t *testing.T) {
	r := bind.NewRegistry()
	r.Register("half", nil, nil)
	if _, err := r.Resolve(modelSchema(t)); err != nil {
		t.Fatalf("resolve: %v", err)
	}
}

func TestDefaultRegistryIsShared(t *testing.T) {
	if bind.DefaultRegistry() != bind.DefaultRegistry() {
		t.Fatal("default registry is not process-wide")
	}
	if _, err := bind.DefaultRegistry().Resolve(modelSchema(t)); err != nil {
		t.Fatalf("resolve: %v", err)
	}
}
