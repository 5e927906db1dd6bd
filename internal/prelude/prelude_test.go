package prelude_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tpc-lang/tpcc/internal/prelude"
)

func TestWrite_definesAllFourBuiltins(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, prelude.Write(&buf))

	out := buf.String()
	for _, label := range []string{"getChar:", "getInt:", "putChar:", "putInt:", "__getCharAux__:"} {
		require.True(t, strings.Contains(out, label), "prelude must define %s", label)
	}
	require.True(t, strings.Contains(out, "syscall"))
}
