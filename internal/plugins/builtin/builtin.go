// Package builtin blank-imports every builtin plugin so that importing
// this package alone registers all of them with internal/pluginregistry.
package builtin

import (
	_ "github.com/sixthshift/artframed/internal/plugins/builtin/clock"
	_ "github.com/sixthshift/artframed/internal/plugins/builtin/quote"
)
