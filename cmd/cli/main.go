// routelog counts log levels per request route across log files.
//
// Each file is analyzed concurrently and the per-route counts are summed
// into a single table.
package main

import (
	"os"

	"github.com/ccollicutt/routelog/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
