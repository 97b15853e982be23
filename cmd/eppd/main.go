// Command eppd is a domain-registrar back office speaking EPP over TLS,
// with read-only RDAP and WHOIS front ends over the same registry store.
package main

import (
	"fmt"
	"os"

	"github.com/qenex-ai/epp-registry-platform/cmd/eppd/commands"
)

// Build-time variables injected via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
