package utils_test

import (
	"bufio"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/prsync/internal/utils"
)

func TestFlushingWriterFlushesBufferedWriters(testInstance *testing.T) {
	var destination bytes.Buffer
	bufferedWriter := bufio.NewWriterSize(&destination, 4096)

	flushingWriter := utils.NewFlushingWriter(bufferedWriter)
	_, writeError := io.WriteString(flushingWriter, "🟢 #1 - Title (octocat)\n")
	require.NoError(testInstance, writeError)

	require.Equal(testInstance, "🟢 #1 - Title (octocat)\n", destination.String())
}

func TestFlushingWriterWrapsOnce(testInstance *testing.T) {
	flushingWriter := utils.NewFlushingWriter(&bytes.Buffer{})
	require.Same(testInstance, flushingWriter, utils.NewFlushingWriter(flushingWriter))
	require.Equal(testInstance, io.Discard, utils.NewFlushingWriter(nil))
}
