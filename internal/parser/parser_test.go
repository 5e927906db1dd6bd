package parser_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tpc-lang/tpcc/internal/ast"
	"github.com/tpc-lang/tpcc/internal/parser"
	"github.com/tpc-lang/tpcc/internal/symtab"
)

func TestParse_globalsAndMain(t *testing.T) {
	src := `int a[3];
char c;
int main(void) {
    int x;
    x = 1;
    a[0] = x;
    if (x < 2) {
        putInt(x);
    } else {
        putChar(c);
    }
    while (x) {
        x = x - 1;
    }
    return 0;
}
`
	root := parser.Parse(strings.NewReader(src), "test.tpc")
	require.Equal(t, ast.Program, root.Label)

	prog := symtab.Build(root)
	a, ok := prog.Globals.Lookup("a")
	require.True(t, ok)
	require.True(t, a.IsArray)
	require.Equal(t, 3, a.ElementCount)

	main, ok := prog.Functions.Lookup("main")
	require.True(t, ok)
	require.Len(t, main.Locals.Entries, 1)
}

func TestParse_functionWithArrayParam(t *testing.T) {
	src := `void fill(int buf[], int n) {
    int i;
    i = 0;
    while (i < n) {
        buf[i] = i;
        i = i + 1;
    }
}
int main(void) { return 0; }
`
	root := parser.Parse(strings.NewReader(src), "test.tpc")
	prog := symtab.Build(root)

	fill, ok := prog.Functions.Lookup("fill")
	require.True(t, ok)
	require.Len(t, fill.Params.Entries, 2)
	require.True(t, fill.Params.Entries[0].IsAddress)
	require.False(t, fill.Params.Entries[1].IsAddress)
}

func TestParse_callWithArgsAndComparisonOperators(t *testing.T) {
	src := `int add(int a, int b) { return a + b; }
int main(void) {
    putInt(add(1, 2));
    return add(3, 4) >= 7;
}
`
	root := parser.Parse(strings.NewReader(src), "test.tpc")
	require.NotNil(t, symtab.Build(root))
}
