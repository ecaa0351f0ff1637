package templates

import (
	"embed"
	"io/fs"
	"sync"
)

//go:embed builtin/*.hbs
var builtinFS embed.FS

var (
	builtinOnce sync.Once
	builtinSet  []*Template
	builtinErr  error
)

// Builtin returns copies of the templates shipped with the module (t1 to t4).
func Builtin() ([]*Template, error) {
	builtinOnce.Do(func() {
		sub, err := fs.Sub(builtinFS, "builtin")
		if err != nil {
			builtinErr = err
			return
		}
		builtinSet, builtinErr = LoadFS(sub)
	})
	if builtinErr != nil {
		return nil, builtinErr
	}
	out := make([]*Template, len(builtinSet))
	for i, tpl := range builtinSet {
		out[i] = cloneTemplate(tpl)
	}
	return out, nil
}
