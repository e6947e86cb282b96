package cmd

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rbenhaga/notionclipper/internal/log"
	"github.com/rbenhaga/notionclipper/pkg/document"
)

// readInput reads the single optional positional argument as a file, or
// stdin when it is absent or "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) > 0 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		return data, errors.WithStack(err)
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	return data, errors.WithStack(err)
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return errors.WithStack(enc.Encode(v))
}

func decodeDocument(data []byte) (*document.Document, error) {
	var doc document.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode document")
	}
	return &doc, nil
}

func logWarnings(warnings []document.Warning) {
	logger := log.Get()
	for _, w := range warnings {
		logger.Warn("conversion degraded",
			zap.String("blockId", w.BlockID),
			zap.String("blockType", w.BlockType),
			zap.String("severity", string(w.Severity)),
			zap.String("message", w.Message),
		)
	}
}
