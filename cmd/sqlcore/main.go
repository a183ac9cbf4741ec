// Command sqlcore runs PPL style commands over parquet and NDJSON files.
package main

import (
	"os"

	"github.com/vegasq/sqlcore/internal/log"
)

func main() {
	defer log.Flush()
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
