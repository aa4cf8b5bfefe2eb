package di_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sectrean/di-engine"
	"github.com/sectrean/di-engine/internal/errors"
	"github.com/sectrean/di-engine/internal/mocks"
	"github.com/sectrean/di-engine/internal/testtypes"
	"github.com/sectrean/di-engine/internal/testutils"
)

var LogError = testutils.LogError

func Test_NewContainer(t *testing.T) {
	t.Run("no options", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		assert.NotNil(t, c)
		assert.Nil(t, c.Parent())
		assert.NotEqual(t, [16]byte{}, [16]byte(c.ID()))
		assert.Equal(t, "container "+c.ID().String(), c.String())
	})

	t.Run("name", func(t *testing.T) {
		c, err := di.NewContainer(di.ContainerName("root"))
		require.NoError(t, err)

		assert.Equal(t, "root", c.Name())
		assert.Equal(t, "root", c.String())
	})

	t.Run("registration error", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithType(testtypes.TypeInterfaceA, nil),
		)
		LogError(t, err)

		assert.Nil(t, c)
		assert.ErrorIs(t, err, di.ErrInvalidRegistration)
	})

	t.Run("nil diagnostics", func(t *testing.T) {
		c, err := di.NewContainer(di.WithDiagnostics(nil))
		LogError(t, err)

		assert.Nil(t, c)
		assert.EqualError(t, err, "di.NewContainer: with diagnostics: diagnostics is nil")
	})

	t.Run("settings apply before registrations", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithFactory(testtypes.TypeInterfaceA, testtypes.NewInterfaceA),
			di.WithDefaultLifetime(di.Singleton.Manager()),
		)
		require.NoError(t, err)

		reg, ok := c.Lookup(testtypes.TypeInterfaceA)
		require.True(t, ok)
		assert.IsType(t, &di.ContainerControlledLifetimeManager{}, reg.LifetimeManager())
	})

	t.Run("module", func(t *testing.T) {
		inner := di.Module{
			di.WithFactory(testtypes.TypeInterfaceA, testtypes.NewInterfaceA),
		}
		outer := di.Module{
			di.WithModule(inner),
			di.WithFactory(testtypes.TypeInterfaceB, testtypes.NewInterfaceB),
		}

		c, err := di.NewContainer(di.WithModule(outer))
		require.NoError(t, err)

		assert.True(t, c.Contains(testtypes.TypeInterfaceA))
		assert.True(t, c.Contains(testtypes.TypeInterfaceB))
	})
}

func Test_Container_Scenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("transient type", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		err = di.RegisterType[testtypes.InterfaceA, *testtypes.StructA](c, di.Transient)
		require.NoError(t, err)

		a1, err := di.Resolve[testtypes.InterfaceA](ctx, c)
		require.NoError(t, err)
		a2, err := di.Resolve[testtypes.InterfaceA](ctx, c)
		require.NoError(t, err)

		assert.NotNil(t, a1)
		assert.NotNil(t, a2)
		assert.IsType(t, &testtypes.StructA{}, a1)
		assert.NotSame(t, a1, a2)
	})

	t.Run("singleton type", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		err = di.RegisterType[testtypes.InterfaceA, *testtypes.StructA](c, di.Singleton)
		require.NoError(t, err)

		a1, err := di.Resolve[testtypes.InterfaceA](ctx, c)
		require.NoError(t, err)
		a2, err := di.Resolve[testtypes.InterfaceA](ctx, c)
		require.NoError(t, err)

		assert.Same(t, a1, a2)
	})
}

func Test_Container_Shadowing(t *testing.T) {
	ctx := context.Background()

	root, err := di.NewContainer()
	require.NoError(t, err)

	rootA := &testtypes.StructA{Tag: "root"}
	childA := &testtypes.StructA{Tag: "child"}

	require.NoError(t, di.RegisterInstance[testtypes.InterfaceA](root, rootA))
	require.NoError(t, di.RegisterInstance[testtypes.InterfaceA](root, rootA, di.WithName("named")))

	child, err := root.NewChild()
	require.NoError(t, err)
	require.NoError(t, di.RegisterInstance[testtypes.InterfaceA](child, childA))

	t.Run("child wins", func(t *testing.T) {
		got, err := di.Resolve[testtypes.InterfaceA](ctx, child)
		require.NoError(t, err)
		assert.Same(t, childA, got)
	})

	t.Run("parent unaffected", func(t *testing.T) {
		got, err := di.Resolve[testtypes.InterfaceA](ctx, root)
		require.NoError(t, err)
		assert.Same(t, rootA, got)
	})

	t.Run("other contracts fall back to parent", func(t *testing.T) {
		got, err := di.Resolve[testtypes.InterfaceA](ctx, child, di.WithName("named"))
		require.NoError(t, err)
		assert.Same(t, rootA, got)
	})

	t.Run("grandchild", func(t *testing.T) {
		grandchild, err := child.NewChild()
		require.NoError(t, err)

		got, err := di.Resolve[testtypes.InterfaceA](ctx, grandchild)
		require.NoError(t, err)
		assert.Same(t, childA, got)
	})

	t.Run("sibling", func(t *testing.T) {
		sibling, err := root.NewChild()
		require.NoError(t, err)

		got, err := di.Resolve[testtypes.InterfaceA](ctx, sibling)
		require.NoError(t, err)
		assert.Same(t, rootA, got)
	})
}

func Test_Container_SingletonPinning(t *testing.T) {
	ctx := context.Background()

	root, err := di.NewContainer(
		di.WithType(testtypes.TypeInterfaceA, testtypes.TypeStructAPtr, di.Singleton),
	)
	require.NoError(t, err)

	child, err := root.NewChild()
	require.NoError(t, err)

	// Resolve from the child first
	fromChild, err := di.Resolve[testtypes.InterfaceA](ctx, child)
	require.NoError(t, err)

	fromRoot, err := di.Resolve[testtypes.InterfaceA](ctx, root)
	require.NoError(t, err)

	assert.Same(t, fromRoot, fromChild)

	t.Run("dependencies come from the owner", func(t *testing.T) {
		root, err := di.NewContainer(
			di.WithInstance(reflect.TypeFor[string](), "root"),
			di.WithFactory(reflect.TypeFor[*testtypes.Labeled](), func(s string) *testtypes.Labeled {
				return &testtypes.Labeled{Name: s}
			}, di.Singleton),
		)
		require.NoError(t, err)

		child, err := root.NewChild(
			di.WithInstance(reflect.TypeFor[string](), "child"),
		)
		require.NoError(t, err)

		got, err := di.Resolve[*testtypes.Labeled](ctx, child)
		require.NoError(t, err)
		assert.Equal(t, "root", got.Name)
	})
}

func Test_Container_HierarchicalIndependence(t *testing.T) {
	ctx := context.Background()
	rec := &testtypes.Recorder{}
	count := 0

	root, err := di.NewContainer(
		di.WithFactory(reflect.TypeFor[*testtypes.Closable](), func() *testtypes.Closable {
			count++
			return &testtypes.Closable{Name: "value", Rec: rec}
		}, di.Hierarchical),
	)
	require.NoError(t, err)

	child1, err := root.NewChild()
	require.NoError(t, err)
	child2, err := root.NewChild()
	require.NoError(t, err)

	v1, err := di.Resolve[*testtypes.Closable](ctx, child1)
	require.NoError(t, err)
	v1Again, err := di.Resolve[*testtypes.Closable](ctx, child1)
	require.NoError(t, err)
	v2, err := di.Resolve[*testtypes.Closable](ctx, child2)
	require.NoError(t, err)

	assert.Same(t, v1, v1Again)
	assert.NotSame(t, v1, v2)
	assert.Equal(t, 2, count)

	require.NoError(t, child1.Close(ctx))
	assert.Equal(t, []string{"value"}, rec.Closed())

	v2Again, err := di.Resolve[*testtypes.Closable](ctx, child2)
	require.NoError(t, err)
	assert.Same(t, v2, v2Again)
	assert.Equal(t, 2, count)

	t.Run("root gets its own value", func(t *testing.T) {
		v, err := di.Resolve[*testtypes.Closable](ctx, root)
		require.NoError(t, err)
		assert.NotSame(t, v2, v)
	})
}

func Test_Container_Close(t *testing.T) {
	ctx := context.Background()

	t.Run("reverse order", func(t *testing.T) {
		rec := &testtypes.Recorder{}
		d1 := &testtypes.Closable{Name: "d1", Rec: rec}
		d2 := &testtypes.Closable{Name: "d2", Rec: rec}

		c, err := di.NewContainer()
		require.NoError(t, err)
		require.NoError(t, di.RegisterInstance(c, d1, di.WithName("d1")))
		require.NoError(t, di.RegisterInstance(c, d2, di.WithName("d2")))

		require.NoError(t, c.Close(ctx))
		assert.Equal(t, []string{"d2", "d1"}, rec.Closed())
	})

	t.Run("closes live children first", func(t *testing.T) {
		rec := &testtypes.Recorder{}

		root, err := di.NewContainer(
			di.WithInstance(reflect.TypeFor[*testtypes.Closable](), &testtypes.Closable{Name: "root", Rec: rec}),
			di.WithFactory(reflect.TypeFor[*testtypes.Closable](), func() *testtypes.Closable {
				return &testtypes.Closable{Name: "scoped", Rec: rec}
			}, di.Hierarchical, di.WithName("scoped")),
		)
		require.NoError(t, err)

		child, err := root.NewChild()
		require.NoError(t, err)
		grandchild, err := child.NewChild()
		require.NoError(t, err)

		_, err = di.Resolve[*testtypes.Closable](ctx, grandchild, di.WithName("scoped"))
		require.NoError(t, err)

		require.NoError(t, root.Close(ctx))
		assert.Equal(t, []string{"scoped", "root"}, rec.Closed())

		_, err = di.Resolve[*testtypes.Closable](ctx, grandchild)
		assert.ErrorIs(t, err, di.ErrContainerClosed)
	})

	t.Run("closed children are not closed again", func(t *testing.T) {
		root, err := di.NewContainer()
		require.NoError(t, err)
		child, err := root.NewChild()
		require.NoError(t, err)

		require.NoError(t, child.Close(ctx))
		assert.NoError(t, root.Close(ctx))
	})

	t.Run("closing a child leaves the parent alone", func(t *testing.T) {
		rec := &testtypes.Recorder{}
		root, err := di.NewContainer(
			di.WithInstance(reflect.TypeFor[*testtypes.Closable](), &testtypes.Closable{Name: "root", Rec: rec}),
		)
		require.NoError(t, err)
		child, err := root.NewChild()
		require.NoError(t, err)

		require.NoError(t, child.Close(ctx))
		assert.Empty(t, rec.Closed())

		got, err := di.Resolve[*testtypes.Closable](ctx, root)
		assert.NoError(t, err)
		assert.NotNil(t, got)
	})

	t.Run("errors are joined", func(t *testing.T) {
		rec := &testtypes.Recorder{}
		c, err := di.NewContainer()
		require.NoError(t, err)
		require.NoError(t, di.RegisterInstance(c, &testtypes.Closable{Name: "a", Rec: rec, Err: errors.New("a failed")}, di.WithName("a")))
		require.NoError(t, di.RegisterInstance(c, &testtypes.Closable{Name: "b", Rec: rec, Err: errors.New("b failed")}, di.WithName("b")))

		err = c.Close(ctx)
		LogError(t, err)

		assert.EqualError(t, err, "di.Container.Close: b failed; a failed")
		assert.Equal(t, []string{"b", "a"}, rec.Closed())
	})

	t.Run("mock closer", func(t *testing.T) {
		a := mocks.NewInterfaceAMock(t)
		a.EXPECT().Close(mock.Anything).Return(nil).Once()

		c, err := di.NewContainer(
			di.WithInstance(testtypes.TypeInterfaceA, a),
		)
		require.NoError(t, err)

		assert.NoError(t, c.Close(ctx))
	})

	t.Run("transient and external values are not closed", func(t *testing.T) {
		rec := &testtypes.Recorder{}
		c, err := di.NewContainer(
			di.WithFactory(reflect.TypeFor[*testtypes.Closable](), func() *testtypes.Closable {
				return &testtypes.Closable{Name: "transient", Rec: rec}
			}),
			di.WithInstance(reflect.TypeFor[*testtypes.Closable](), &testtypes.Closable{Name: "external", Rec: rec},
				di.External, di.WithName("external")),
		)
		require.NoError(t, err)

		_, err = di.Resolve[*testtypes.Closable](ctx, c)
		require.NoError(t, err)

		require.NoError(t, c.Close(ctx))
		assert.Empty(t, rec.Closed())
	})

	t.Run("twice", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		require.NoError(t, c.Close(ctx))

		err = c.Close(ctx)
		LogError(t, err)
		assert.ErrorIs(t, err, di.ErrContainerClosed)
	})

	t.Run("use after close", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithFactory(testtypes.TypeInterfaceA, testtypes.NewInterfaceA),
		)
		require.NoError(t, err)
		require.NoError(t, c.Close(ctx))

		_, err = c.Resolve(ctx, testtypes.TypeInterfaceA)
		LogError(t, err)
		assert.EqualError(t, err, "resolve testtypes.InterfaceA: container closed")

		var resErr *di.ResolutionError
		require.ErrorAs(t, err, &resErr)
		assert.Equal(t, di.ContractOf[testtypes.InterfaceA](), resErr.Contract)

		err = c.RegisterFactory(testtypes.TypeInterfaceA, testtypes.NewInterfaceA)
		assert.ErrorIs(t, err, di.ErrContainerClosed)

		_, err = c.NewChild()
		assert.ErrorIs(t, err, di.ErrContainerClosed)

		err = c.AddConstructor(testtypes.NewStructAPtr)
		assert.ErrorIs(t, err, di.ErrContainerClosed)
	})
}

func Test_Container_Internals(t *testing.T) {
	ctx := testutils.ContextWithTestValue(context.Background(), "value")

	c, err := di.NewContainer()
	require.NoError(t, err)

	t.Run("context", func(t *testing.T) {
		got, err := di.Resolve[context.Context](ctx, c)
		require.NoError(t, err)
		assert.Equal(t, ctx, got)
	})

	t.Run("container", func(t *testing.T) {
		child, err := c.NewChild()
		require.NoError(t, err)

		got, err := di.Resolve[*di.Container](ctx, child)
		require.NoError(t, err)
		assert.Same(t, child, got)
	})

	t.Run("top-level scope", func(t *testing.T) {
		got, err := di.Resolve[di.Scope](ctx, c)
		require.NoError(t, err)
		assert.Same(t, c, got)
	})

	t.Run("injected scope", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithFactory(testtypes.TypeInterfaceA, testtypes.NewInterfaceA),
			di.WithFactory(reflect.TypeFor[*testtypes.ScopeHolder](), func(s di.Scope) (*testtypes.ScopeHolder, error) {
				// Not ready until the factory returns
				_, err := s.Resolve(ctx, testtypes.TypeInterfaceA)
				assert.Error(t, err)
				LogError(t, err)

				return &testtypes.ScopeHolder{Scope: s}, nil
			}),
		)
		require.NoError(t, err)

		holder, err := di.Resolve[*testtypes.ScopeHolder](ctx, c)
		require.NoError(t, err)

		s, ok := holder.Scope.(di.Scope)
		require.True(t, ok)
		assert.True(t, s.Contains(testtypes.TypeInterfaceA))

		a, err := di.Resolve[testtypes.InterfaceA](ctx, s)
		assert.NoError(t, err)
		assert.NotNil(t, a)
	})
}

func Test_Container_ResolveAll(t *testing.T) {
	ctx := context.Background()

	a0 := &testtypes.StructA{Tag: 0}
	a1 := &testtypes.StructA{Tag: 1}
	a2 := &testtypes.StructA{Tag: 2}
	a3 := &testtypes.StructA{Tag: 3}

	root, err := di.NewContainer(
		di.WithInstance(testtypes.TypeInterfaceA, a0),
		di.WithInstance(testtypes.TypeInterfaceA, a1, di.WithName("one")),
	)
	require.NoError(t, err)

	child, err := root.NewChild(
		di.WithInstance(testtypes.TypeInterfaceA, a2, di.WithName("one")),
		di.WithInstance(testtypes.TypeInterfaceA, a3, di.WithName("three")),
	)
	require.NoError(t, err)

	t.Run("ancestors first, child replaces", func(t *testing.T) {
		got, err := di.ResolveAll[testtypes.InterfaceA](ctx, child)
		require.NoError(t, err)
		assert.Equal(t, []testtypes.InterfaceA{a0, a2, a3}, got)
	})

	t.Run("by name", func(t *testing.T) {
		got, err := di.ResolveAll[testtypes.InterfaceA](ctx, child, di.WithName("three"))
		require.NoError(t, err)
		assert.Equal(t, []testtypes.InterfaceA{a3}, got)
	})

	t.Run("slice type", func(t *testing.T) {
		got, err := di.Resolve[[]testtypes.InterfaceA](ctx, root)
		require.NoError(t, err)
		assert.Equal(t, []testtypes.InterfaceA{a0, a1}, got)
	})

	t.Run("none registered", func(t *testing.T) {
		got, err := di.ResolveAll[testtypes.InterfaceB](ctx, root)
		require.NoError(t, err)
		assert.Empty(t, got)

		_, err = di.Resolve[[]testtypes.InterfaceB](ctx, root)
		LogError(t, err)
		assert.ErrorIs(t, err, di.ErrNotRegistered)
	})

	t.Run("variadic", func(t *testing.T) {
		c, err := root.NewChild(
			di.WithConstructor(testtypes.NewVariadic),
		)
		require.NoError(t, err)

		got, err := di.Resolve[*testtypes.Variadic](ctx, c)
		require.NoError(t, err)
		assert.Equal(t, []testtypes.InterfaceA{a0, a1}, got.All)

		empty, err := di.NewContainer(di.WithConstructor(testtypes.NewVariadic))
		require.NoError(t, err)

		got, err = di.Resolve[*testtypes.Variadic](ctx, empty)
		require.NoError(t, err)
		assert.Empty(t, got.All)
	})
}

func Test_Container_Contains(t *testing.T) {
	root, err := di.NewContainer(
		di.WithFactory(testtypes.TypeInterfaceA, testtypes.NewInterfaceA),
		di.WithFactory(testtypes.TypeInterfaceB, testtypes.NewInterfaceB, di.WithName("b")),
	)
	require.NoError(t, err)

	child, err := root.NewChild()
	require.NoError(t, err)

	assert.True(t, child.Contains(testtypes.TypeInterfaceA))
	assert.False(t, child.Contains(testtypes.TypeInterfaceB))
	assert.True(t, child.Contains(testtypes.TypeInterfaceB, di.WithName("b")))
	assert.False(t, child.Contains(testtypes.TypeStructAPtr))
	assert.False(t, child.Contains(nil))

	assert.True(t, child.CanResolve(testtypes.TypeStructAPtr))
	assert.True(t, child.CanResolve(reflect.TypeFor[[]testtypes.InterfaceA]()))
	assert.False(t, child.CanResolve(testtypes.TypeInterfaceC))

	reg, ok := child.Lookup(testtypes.TypeInterfaceA)
	require.True(t, ok)
	assert.Same(t, root, reg.Owner())
	assert.Equal(t, di.CategoryFactory, reg.Category())
	assert.Equal(t, di.ContractOf[testtypes.InterfaceA](), reg.Contract())

	_, ok = child.Lookup(testtypes.TypeInterfaceC)
	assert.False(t, ok)
}

func Test_Container_AutoRegistration(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		_, err = di.Resolve[*testtypes.StructA](ctx, c)
		require.NoError(t, err)
		assert.False(t, c.Contains(testtypes.TypeStructAPtr))
	})

	t.Run("enabled", func(t *testing.T) {
		root, err := di.NewContainer(di.WithAutoRegistration())
		require.NoError(t, err)
		child, err := root.NewChild()
		require.NoError(t, err)

		_, err = di.Resolve[*testtypes.StructA](ctx, child)
		require.NoError(t, err)

		reg, ok := root.Lookup(testtypes.TypeStructAPtr)
		require.True(t, ok)
		assert.Equal(t, di.CategoryCache, reg.Category())
	})

	t.Run("struct value", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		got, err := di.Resolve[testtypes.StructA](ctx, c)
		require.NoError(t, err)
		assert.Equal(t, testtypes.StructA{}, got)
	})
}

func Test_Container_Diagnostics(t *testing.T) {
	ctx := context.Background()
	d := mocks.NewDiagnosticsMock(t)

	d.EXPECT().Registered(mock.Anything, mock.Anything).Return().Once()
	d.EXPECT().Resolved(ctx, mock.Anything, di.ContractOf[testtypes.InterfaceA](), mock.Anything).Return().Once()
	d.EXPECT().ResolveFailed(ctx, mock.Anything, di.ContractOf[testtypes.InterfaceB](), mock.Anything).Return().Once()
	d.EXPECT().ContainerClosed(mock.Anything, nil).Return().Once()

	c, err := di.NewContainer(
		di.WithDiagnostics(d),
		di.WithFactory(testtypes.TypeInterfaceA, testtypes.NewInterfaceA),
	)
	require.NoError(t, err)

	_, err = di.Resolve[testtypes.InterfaceA](ctx, c)
	require.NoError(t, err)

	_, err = di.Resolve[testtypes.InterfaceB](ctx, c)
	require.Error(t, err)

	require.NoError(t, c.Close(ctx))
}
