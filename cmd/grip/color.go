package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"grip/internal/ui"
)

type colorMode string

const (
	colorModeAuto colorMode = "auto"
	colorModeOn   colorMode = "on"
	colorModeOff  colorMode = "off"
)

func readColorMode(value string) (colorMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return colorModeAuto, nil
	case "on":
		return colorModeOn, nil
	case "off":
		return colorModeOff, nil
	default:
		return "", fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

func shouldColor(mode colorMode) bool {
	switch mode {
	case colorModeOn:
		return true
	case colorModeOff:
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

// stylesFromFlags resolves the persistent --color flag into a style set.
func stylesFromFlags(cmd *cobra.Command) (ui.Styles, error) {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return ui.Styles{}, err
	}
	mode, err := readColorMode(value)
	if err != nil {
		return ui.Styles{}, err
	}
	return ui.NewStyles(shouldColor(mode)), nil
}

func quietFromFlags(cmd *cobra.Command) (bool, error) {
	return cmd.Root().PersistentFlags().GetBool("quiet")
}
