package parse

import (
	"fmt"
	"strings"
	"testing"
)

func BenchmarkParse(b *testing.B) {
	direct := []byte(makeRows(200))
	embedded := []byte("<html><body><script>var r = JSON.parse(\"" +
		strings.ReplaceAll(makeRows(200), `"`, `\"`) + "\");</script></body></html>")

	b.Run("direct", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = Parse(direct, "application/json")
		}
	})
	b.Run("embedded", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = Parse(embedded, "text/html")
		}
	})
}

func makeRows(n int) string {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"nipti":"K%08dA","emriISubjektit":"Subject %d","qyteti":"Tirane","dataERegjistrimit":"01/02/2020"}`, i, i)
	}
	sb.WriteString("]")
	return sb.String()
}
