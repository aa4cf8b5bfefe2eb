package di

import (
	"reflect"
	"strings"

	"github.com/sectrean/di-engine/internal/errors"
)

const tagKey = "di"

// parseFieldTag returns the [Descriptor] for a struct field tagged with `di:"..."`.
//
// Supported tags:
//
//	`di:""`               resolve the field type
//	`di:"name=primary"`   resolve the field type with a name
//	`di:"optional"`       leave the zero value if the field type cannot be resolved
//	`di:"-"`              never inject the field
//
// Options can be combined: `di:"name=primary,optional"`.
// ok is false if the field has no tag or is skipped.
func parseFieldTag(f reflect.StructField) (d Descriptor, ok bool, err error) {
	tag, found := f.Tag.Lookup(tagKey)
	if !found || tag == "-" {
		return Descriptor{}, false, nil
	}

	d = Descriptor{Label: f.Name}
	if tag == "" {
		return d, true, nil
	}

	for _, opt := range strings.Split(tag, ",") {
		opt = strings.TrimSpace(opt)

		switch {
		case opt == "":
			continue
		case opt == "optional":
			d.AllowDefault = true
		case strings.HasPrefix(opt, "name="):
			d.Contract.Name = strings.TrimPrefix(opt, "name=")
		default:
			return Descriptor{}, false, errors.Errorf("field %s: unknown di tag option %q", f.Name, opt)
		}
	}

	return d, true, nil
}
