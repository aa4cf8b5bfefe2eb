package di

// A Module is a collection of container options.
// It can be used to export a re-usable group of related registrations.
//
// Example:
//
//	var StoreModule = di.Module{
//		di.WithFactory(reflect.TypeFor[*sql.DB](), OpenDB, di.Singleton),
//		di.WithType(reflect.TypeFor[Store](), reflect.TypeFor[*SQLStore]()),
//	}
type Module []ContainerOption

func (Module) applyContainer(*Container) error { return nil }
func (Module) order() optionOrder              { return orderSetting }

// WithModule applies the options in a [Module] when calling [NewContainer] or [Container.NewChild].
//
// Example:
//
//	c, err := di.NewContainer(
//		di.WithModule(StoreModule),
//		di.WithType(reflect.TypeFor[*Handler](), nil),
//	)
func WithModule(m Module) ContainerOption {
	return m
}

// flattenModules replaces each Module with its options, including nested modules.
func flattenModules(opts []ContainerOption) []ContainerOption {
	flat := make([]ContainerOption, 0, len(opts))
	for _, opt := range opts {
		if mod, ok := opt.(Module); ok {
			flat = append(flat, flattenModules(mod)...)
			continue
		}
		flat = append(flat, opt)
	}

	return flat
}
