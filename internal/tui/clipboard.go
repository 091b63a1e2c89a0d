package tui

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// copyToClipboard copies text to the system clipboard. Tests replace it.
var copyToClipboard = func(text string) error {
	if clipboard.Unsupported {
		return errors.New("no clipboard tool: install xclip, xsel or wl-clipboard")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	return nil
}
