package terminal

import (
	_ "embed"
	"fmt"

	"github.com/leonelquinteros/gotext"
)

//go:embed locales/en.po
var enPo []byte

// catalog holds the translated UI strings. Keys missing from the
// catalog are returned unchanged.
var catalog = loadCatalog(enPo)

func loadCatalog(data []byte) *gotext.Po {
	po := gotext.NewPo()
	po.Parse(data)
	return po
}

// lookup is a function value so keys looked up at runtime are not
// checked by vet as format strings.
var lookup = catalog.Get

// T translates a message key
func T(key string) string {
	return lookup(key)
}

// Tf translates a message key and formats the result with args
func Tf(key string, args ...interface{}) string {
	return fmt.Sprintf(lookup(key), args...)
}
