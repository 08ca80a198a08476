package main

import (
	"ucsc-snapshots/cmd/ucsc-snapshots/commands"
	"ucsc-snapshots/pkg/serviceutil"
)

func main() {
	ctx, cancel := serviceutil.SignalContext()
	defer cancel()
	commands.ExecuteContext(ctx)
}
