package di_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sectrean/di-engine"
	"github.com/sectrean/di-engine/internal/testtypes"
)

func BenchmarkContainer_Contains(b *testing.B) {
	c, err := di.NewContainer(
		di.WithInstance(testtypes.TypeStructAPtr, &testtypes.StructA{}),
	)
	require.NoError(b, err)

	for b.Loop() {
		_ = c.Contains(testtypes.TypeStructAPtr)
	}
}

func BenchmarkContainer_Contains_WithName(b *testing.B) {
	c, err := di.NewContainer(
		di.WithInstance(testtypes.TypeStructAPtr, &testtypes.StructA{}),
		di.WithInstance(testtypes.TypeStructAPtr, &testtypes.StructA{}, di.WithName("b")),
	)
	require.NoError(b, err)

	for b.Loop() {
		_ = c.Contains(testtypes.TypeStructAPtr, di.WithName("b"))
	}
}

func BenchmarkContainer_Resolve_Instance(b *testing.B) {
	c, err := di.NewContainer(
		di.WithInstance(testtypes.TypeStructAPtr, &testtypes.StructA{}),
	)
	require.NoError(b, err)

	ctx := context.Background()

	for b.Loop() {
		_, _ = di.Resolve[*testtypes.StructA](ctx, c)
	}
}

func BenchmarkContainer_Resolve_Factory_Singleton(b *testing.B) {
	c, err := di.NewContainer(
		di.WithFactory(testtypes.TypeInterfaceA, testtypes.NewInterfaceA, di.Singleton),
	)
	require.NoError(b, err)

	ctx := context.Background()

	for b.Loop() {
		_, _ = di.Resolve[testtypes.InterfaceA](ctx, c)
	}
}

func BenchmarkContainer_Resolve_Factory_Transient(b *testing.B) {
	c, err := di.NewContainer(
		di.WithFactory(testtypes.TypeInterfaceA, testtypes.NewInterfaceA),
	)
	require.NoError(b, err)

	ctx := context.Background()

	for b.Loop() {
		_, _ = di.Resolve[testtypes.InterfaceA](ctx, c)
	}
}

func BenchmarkContainer_Resolve_Graph(b *testing.B) {
	c, err := di.NewContainer(
		di.WithFactory(testtypes.TypeInterfaceA, testtypes.NewInterfaceA),
		di.WithFactory(testtypes.TypeInterfaceB, testtypes.NewInterfaceB),
		di.WithFactory(testtypes.TypeInterfaceC, testtypes.NewInterfaceC),
		di.WithFactory(testtypes.TypeInterfaceD, testtypes.NewInterfaceD),
	)
	require.NoError(b, err)

	ctx := context.Background()

	for b.Loop() {
		_, _ = di.Resolve[testtypes.InterfaceD](ctx, c)
	}
}

func BenchmarkContainer_Resolve_Implicit(b *testing.B) {
	c, err := di.NewContainer(
		di.WithAutoRegistration(),
		di.WithConstructor(testtypes.NewStructDPtr),
		di.WithConstructor(testtypes.NewStructCPtr),
		di.WithConstructor(testtypes.NewStructBPtr),
	)
	require.NoError(b, err)

	ctx := context.Background()

	for b.Loop() {
		_, _ = di.Resolve[*testtypes.StructD](ctx, c)
	}
}

func BenchmarkContainer_Resolve_Child_Hierarchical(b *testing.B) {
	c, err := di.NewContainer(
		di.WithFactory(testtypes.TypeInterfaceA, testtypes.NewInterfaceA, di.Hierarchical),
	)
	require.NoError(b, err)

	ctx := context.Background()

	for b.Loop() {
		child, _ := c.NewChild()
		_, _ = di.Resolve[testtypes.InterfaceA](ctx, child)
		_ = child.Close(ctx)
	}
}

func BenchmarkContainer_ResolveAll(b *testing.B) {
	c, err := di.NewContainer(
		di.WithInstance(testtypes.TypeInterfaceA, &testtypes.StructA{Tag: 1}),
		di.WithInstance(testtypes.TypeInterfaceA, &testtypes.StructA{Tag: 2}, di.WithName("two")),
		di.WithInstance(testtypes.TypeInterfaceA, &testtypes.StructA{Tag: 3}, di.WithName("three")),
	)
	require.NoError(b, err)

	ctx := context.Background()

	for b.Loop() {
		_, _ = di.ResolveAll[testtypes.InterfaceA](ctx, c)
	}
}
