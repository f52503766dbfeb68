package cmd

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/reprise-cli/reprise/icon"
	"github.com/reprise-cli/reprise/key"
	"github.com/reprise-cli/reprise/style"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"
)

// checkPlayer makes sure the configured mpv binary can be found.
func checkPlayer() error {
	binary := viper.GetString(key.PlayerDefault)
	if _, err := exec.LookPath(binary); err != nil {
		printMissingDependency(binary)
		return fmt.Errorf("%s not found", binary)
	}
	return nil
}

func printMissingDependency(dep string) {
	var installCmd string
	switch runtime.GOOS {
	case "darwin":
		installCmd = "brew install mpv"
	case "linux":
		installCmd = "sudo apt install mpv"
	case "windows":
		installCmd = "scoop install mpv"
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.HiRed).Render(fmt.Sprintf("%s Player not found", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("'%s' is not in your PATH. Set %s to point at an mpv binary.", dep, key.PlayerDefault))

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
