package di_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sectrean/di-engine"
	"github.com/sectrean/di-engine/internal/testtypes"
)

func Test_Container_RegisterType(t *testing.T) {
	tests := []struct {
		name     string
		contract reflect.Type
		impl     reflect.Type
		opts     []di.RegisterOption
		wantErr  string
	}{
		{
			name:     "nil contract",
			contract: nil,
			wantErr:  "contract type is nil: invalid registration",
		},
		{
			name:     "not assignable",
			contract: testtypes.TypeInterfaceB,
			impl:     testtypes.TypeStructAPtr,
			wantErr: "di.Container.RegisterType testtypes.InterfaceB: " +
				"*testtypes.StructA is not assignable to testtypes.InterfaceB: invalid registration",
		},
		{
			name:     "interface without constructor",
			contract: testtypes.TypeInterfaceA,
			wantErr: "di.Container.RegisterType testtypes.InterfaceA: " +
				"testtypes.InterfaceA cannot be constructed: invalid registration",
		},
		{
			name:     "alias not assignable",
			contract: testtypes.TypeStructAPtr,
			opts:     []di.RegisterOption{di.As[testtypes.InterfaceB]()},
			wantErr: "di.Container.RegisterType *testtypes.StructA: " +
				"as testtypes.InterfaceB: *testtypes.StructA is not assignable: invalid registration",
		},
		{
			name:     "injection constructor returns wrong type",
			contract: testtypes.TypeInterfaceB,
			opts:     []di.RegisterOption{di.InjectionConstructor(testtypes.NewInterfaceA)},
			wantErr:  "invalid registration",
		},
		{
			name:     "two injection constructors",
			contract: testtypes.TypeInterfaceA,
			opts: []di.RegisterOption{
				di.InjectionConstructor(testtypes.NewInterfaceA),
				di.InjectionConstructor(testtypes.NewInterfaceAStruct),
			},
			wantErr: "di.Container.RegisterType testtypes.InterfaceA: " +
				"injection constructor: constructor already set",
		},
		{
			name:     "named parameter not found",
			contract: testtypes.TypeInterfaceB,
			opts: []di.RegisterOption{
				di.InjectionConstructor(testtypes.NewInterfaceB),
				di.WithNamed[testtypes.InterfaceC]("c"),
			},
			wantErr: "di.Container.RegisterType testtypes.InterfaceB: " +
				"with named testtypes.InterfaceC: parameter not found",
		},
		{
			name:     "empty method name",
			contract: testtypes.TypeStructAPtr,
			opts:     []di.RegisterOption{di.InjectionMethod("")},
			wantErr: "di.Container.RegisterType *testtypes.StructA: " +
				"injection method: method name is empty",
		},
		{
			name:     "empty property name",
			contract: testtypes.TypeStructAPtr,
			opts:     []di.RegisterOption{di.InjectionProperty("")},
			wantErr: "di.Container.RegisterType *testtypes.StructA: " +
				"injection property: field name is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := di.NewContainer()
			require.NoError(t, err)

			err = c.RegisterType(tt.contract, tt.impl, tt.opts...)
			LogError(t, err)

			assert.ErrorContains(t, err, tt.wantErr)
		})
	}

	t.Run("interface with constructor", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithConstructor(testtypes.NewInterfaceA),
		)
		require.NoError(t, err)

		err = c.RegisterType(testtypes.TypeInterfaceA, nil)
		require.NoError(t, err)

		a, err := di.Resolve[testtypes.InterfaceA](context.Background(), c)
		require.NoError(t, err)
		assert.NotNil(t, a)
	})

	t.Run("replace", func(t *testing.T) {
		a1 := &testtypes.StructA{Tag: 1}
		a2 := &testtypes.StructA{Tag: 2}

		c, err := di.NewContainer(
			di.WithInstance(testtypes.TypeInterfaceA, a1),
			di.WithInstance(testtypes.TypeInterfaceA, a2),
		)
		require.NoError(t, err)

		got, err := di.Resolve[testtypes.InterfaceA](context.Background(), c)
		require.NoError(t, err)
		assert.Same(t, a2, got)

		all, err := di.ResolveAll[testtypes.InterfaceA](context.Background(), c)
		require.NoError(t, err)
		assert.Equal(t, []testtypes.InterfaceA{a2}, all)
	})
}

func Test_Container_RegisterInstance(t *testing.T) {
	c, err := di.NewContainer()
	require.NoError(t, err)

	t.Run("nil contract", func(t *testing.T) {
		err := c.RegisterInstance(nil, &testtypes.StructA{})
		LogError(t, err)
		assert.ErrorIs(t, err, di.ErrInvalidRegistration)
	})

	t.Run("not assignable", func(t *testing.T) {
		err := c.RegisterInstance(testtypes.TypeInterfaceB, &testtypes.StructA{})
		LogError(t, err)
		assert.EqualError(t, err, "di.Container.RegisterInstance testtypes.InterfaceB: "+
			"*testtypes.StructA is not assignable to testtypes.InterfaceB: invalid registration")
	})

	t.Run("injection members", func(t *testing.T) {
		err := c.RegisterInstance(testtypes.TypeStructAPtr, &testtypes.StructA{}, di.InjectionMethod("A"))
		LogError(t, err)
		assert.ErrorIs(t, err, di.ErrInvalidRegistration)
	})

	t.Run("nil instance", func(t *testing.T) {
		err := di.RegisterInstance[testtypes.InterfaceA](c, nil, di.WithName("nil"))
		require.NoError(t, err)

		got, err := di.Resolve[testtypes.InterfaceA](context.Background(), c, di.WithName("nil"))
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("registration", func(t *testing.T) {
		a := &testtypes.StructA{}
		err := di.RegisterInstance[testtypes.InterfaceA](c, a, di.WithName("a"), di.As[*testtypes.StructA]())
		require.NoError(t, err)

		reg, ok := c.Lookup(testtypes.TypeInterfaceA, di.WithName("a"))
		require.True(t, ok)

		assert.Equal(t, di.CategoryInstance, reg.Category())
		assert.Equal(t, "Instance", reg.Category().String())
		assert.Same(t, a, reg.Data())
		assert.Same(t, c, reg.Owner())
		assert.Equal(t, []di.Contract{
			di.ContractOf[testtypes.InterfaceA]("a"),
			di.ContractOf[*testtypes.StructA]("a"),
		}, reg.Contracts())
		assert.Equal(t, `Instance testtypes.InterfaceA (Name "a") (Singleton)`, reg.String())

		alias, ok := c.Lookup(testtypes.TypeStructAPtr, di.WithName("a"))
		require.True(t, ok)
		assert.Same(t, reg, alias)
	})
}

func Test_Container_RegisterFactory(t *testing.T) {
	c, err := di.NewContainer()
	require.NoError(t, err)

	tests := []struct {
		name    string
		factory any
		opts    []di.RegisterOption
		wantErr string
	}{
		{
			name:    "nil",
			factory: nil,
			wantErr: "di.Container.RegisterFactory testtypes.InterfaceA: factory: function is nil: invalid registration",
		},
		{
			name:    "not a function",
			factory: "factory",
			wantErr: "di.Container.RegisterFactory testtypes.InterfaceA: factory: string is not a function: invalid registration",
		},
		{
			name:    "no return value",
			factory: func() {},
			wantErr: "di.Container.RegisterFactory testtypes.InterfaceA: " +
				"factory: function func() must return T or (T, error): invalid registration",
		},
		{
			name:    "wrong return type",
			factory: testtypes.NewInterfaceB,
			wantErr: "not assignable to testtypes.InterfaceA: invalid registration",
		},
		{
			name:    "injection members",
			factory: testtypes.NewInterfaceA,
			opts:    []di.RegisterOption{di.InjectionProperty("A")},
			wantErr: "di.Container.RegisterFactory testtypes.InterfaceA: " +
				"injection members are not supported for factories: invalid registration",
		},
		{
			name: "named parameter on factory func",
			factory: di.FactoryFunc(func(*di.ResolutionContext) (any, error) {
				return nil, nil
			}),
			opts: []di.RegisterOption{di.WithNamed[testtypes.InterfaceB]("b")},
			wantErr: "di.Container.RegisterFactory testtypes.InterfaceA: " +
				"with named: not supported for FactoryFunc: invalid registration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.RegisterFactory(testtypes.TypeInterfaceA, tt.factory, tt.opts...)
			LogError(t, err)

			assert.ErrorContains(t, err, tt.wantErr)
			assert.ErrorIs(t, err, di.ErrInvalidRegistration)
		})
	}

	t.Run("registration", func(t *testing.T) {
		err := di.RegisterFactory[testtypes.InterfaceA](c, testtypes.NewInterfaceA, di.Singleton)
		require.NoError(t, err)

		reg, ok := c.Lookup(testtypes.TypeInterfaceA)
		require.True(t, ok)

		assert.Equal(t, di.CategoryFactory, reg.Category())
		assert.NotNil(t, reg.Data())
		assert.Equal(t, "Factory testtypes.InterfaceA (Singleton)", reg.String())
	})

	t.Run("type registration", func(t *testing.T) {
		err := di.RegisterType[testtypes.InterfaceB, *testtypes.StructB](c)
		require.NoError(t, err)

		reg, ok := c.Lookup(testtypes.TypeInterfaceB)
		require.True(t, ok)

		assert.Equal(t, testtypes.TypeStructBPtr, reg.Data())
		assert.Equal(t, "Type testtypes.InterfaceB -> *testtypes.StructB (Transient)", reg.String())
	})
}

func Test_Category_String(t *testing.T) {
	assert.Equal(t, "Uninitialized", di.CategoryUninitialized.String())
	assert.Equal(t, "Type", di.CategoryType.String())
	assert.Equal(t, "Instance", di.CategoryInstance.String())
	assert.Equal(t, "Factory", di.CategoryFactory.String())
	assert.Equal(t, "Internal", di.CategoryInternal.String())
	assert.Equal(t, "Cache", di.CategoryCache.String())
	assert.Equal(t, "Unknown Category 42", di.Category(42).String())
}

func Test_Contract_String(t *testing.T) {
	assert.Equal(t, "testtypes.InterfaceA", di.ContractOf[testtypes.InterfaceA]().String())
	assert.Equal(t, `testtypes.InterfaceA (Name "a")`, di.ContractOf[testtypes.InterfaceA]("a").String())
	assert.Equal(t, "<nil>", di.Contract{}.String())
	assert.True(t, di.Contract{}.IsZero())
}
