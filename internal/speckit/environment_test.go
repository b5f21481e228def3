package speckit

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/speckit-paths/internal/layout"
)

func TestQuoteShellValue(testInstance *testing.T) {
	require.Equal(testInstance, "'/proj/specs'", QuoteShellValue("/proj/specs"))
	require.Equal(testInstance, `'/home/o'\''brien/proj'`, QuoteShellValue("/home/o'brien/proj"))
	require.Equal(testInstance, "'/path with $HOME'", QuoteShellValue("/path with $HOME"))
}

func TestWriteShellExports(testInstance *testing.T) {
	var buffer bytes.Buffer
	entries := []layout.EnvironmentEntry{
		{Name: "REPO_ROOT", Value: "/proj"},
		{Name: "SPECS_DIR", Value: "/proj/specs"},
	}

	require.NoError(testInstance, WriteShellExports(&buffer, entries))
	require.Equal(testInstance, "export REPO_ROOT='/proj'\nexport SPECS_DIR='/proj/specs'\n", buffer.String())
}
