package cli

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fmdata/internal/client/client"
)

// FormatError renders a command failure for the terminal. Data API
// failures show the server's code and message.
func FormatError(err error) string {
	if apiErr, ok := client.AsAPIError(err); ok {
		if apiErr.Message == "" {
			return fmt.Sprintf("Error %s", apiErr.Code)
		}
		return fmt.Sprintf("Error %s: %s", apiErr.Code, apiErr.Message)
	}

	var usage usageError
	if errors.As(err, &usage) {
		return "Usage: " + string(usage)
	}

	if client.KindOf(err) == nil {
		return fmt.Sprintf("Error: %v", err)
	}
	rich := client.ToRichError(err)
	return fmt.Sprintf("Error [%s]: %v", rich.TextCode, err)
}
