package hooks

import (
	"io"

	"github.com/syifan/goseth"
)

// DumpHandle writes a one-level debug dump of a resource handle to w. This
// is the only supported way to look inside the handle passed to OnInit: the
// handle's shape has no cross-version stability contract, so observers
// request a rendered dump instead of depending on concrete fields.
func DumpHandle(handle any, w io.Writer) error {
	if handle == nil {
		_, err := w.Write([]byte("null"))
		return err
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(handle)
	serializer.SetMaxDepth(1)

	return serializer.Serialize(w)
}
