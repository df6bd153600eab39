package ui

import (
	"fmt"
	"io"

	"github.com/TonnyWong1052/gemsh/internal/config"
)

// PrintModels writes one supported model identifier per line. The output is
// left unstyled so it can be piped.
func PrintModels(w io.Writer) {
	for _, m := range config.GetSupportedModels() {
		fmt.Fprintln(w, m)
	}
}
