package main

import (
	"github.com/reprise-cli/reprise/cmd"
	"github.com/reprise-cli/reprise/config"
	"github.com/reprise-cli/reprise/log"
	"github.com/reprise-cli/reprise/player"
	"github.com/reprise-cli/reprise/where"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	go player.SweepSockets(where.Temp(), player.StaleSocketAge)

	cmd.Execute()
}
