package version

import (
	"context"
	"fmt"
	"time"

	"github.com/reprise-cli/reprise/color"
	"github.com/reprise-cli/reprise/constant"
	"github.com/reprise-cli/reprise/icon"
	"github.com/reprise-cli/reprise/key"
	"github.com/reprise-cli/reprise/style"
	"github.com/reprise-cli/reprise/util"
	"github.com/spf13/viper"
)

// Notify prints a notice when a newer release exists.
func Notify() {
	if !viper.GetBool(key.CliVersionCheck) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	erase := util.PrintErasable(fmt.Sprintf("%s Checking if new version is available...", icon.Get(icon.Progress)))
	latest, err := Latest(ctx)
	erase()
	if err != nil {
		return
	}

	if comp, err := Compare(latest, constant.Version); err != nil || comp <= 0 {
		return
	}

	fmt.Printf(`
%s New version is available %s %s
%s

`,
		style.Fg(color.Green)("▇▇▇"),
		style.Bold(latest),
		style.Faint(fmt.Sprintf("(You're on %s)", constant.Version)),
		style.Faint("https://github.com/reprise-cli/reprise/releases/tag/v"+latest),
	)
}
