// Command snippets is the personal code snippet manager: a CLI over a local
// SQLite file, and with "snippets serve" the loopback API the desktop UI
// talks to.
package main

import (
	"context"
	"os"

	"github.com/sakif/snippet-manager/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
