// Command contractdoc renders, serves and checks the documentation of the
// contracts package.
package main

import (
	"github.com/ggoodman/contracts/docs"
	"github.com/ggoodman/contracts/internal/cli"
)

func main() {
	cli.Execute(docs.Builtin())
}
