package speckit

import (
	"fmt"
	"io"
	"strings"

	"github.com/temirov/speckit-paths/internal/layout"
)

const (
	shellExportTemplateConstant = "export %s=%s\n"
	shellSingleQuoteConstant    = "'"
	shellEscapedQuoteConstant   = `'\''`

	// MigrationNoticeMessage is shown to sourcing scripts while the legacy layout is in use.
	MigrationNoticeMessage = "Spec-Kit legacy layout detected; move the top-level support directories under .spec-kit/ and docs/memory/"
)

// WriteShellExports writes one POSIX export statement per entry, suitable for eval.
func WriteShellExports(writer io.Writer, entries []layout.EnvironmentEntry) error {
	var builder strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&builder, shellExportTemplateConstant, entry.Name, QuoteShellValue(entry.Value))
	}
	_, writeError := io.WriteString(writer, builder.String())
	return writeError
}

// QuoteShellValue wraps value in single quotes, escaping embedded quotes.
func QuoteShellValue(value string) string {
	return shellSingleQuoteConstant + strings.ReplaceAll(value, shellSingleQuoteConstant, shellEscapedQuoteConstant) + shellSingleQuoteConstant
}
