package tests_test

import (
	"fmt"
	"strings"

	"github.com/containerd/nerdctl/mod/tigron/test"
	"github.com/containerd/nerdctl/mod/tigron/tig"
)

// expectBlockFlagged returns a comparator verifying that block index n was
// marked "!!" in the friendly summary output.
func expectBlockFlagged(n int) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		marker := fmt.Sprintf("[block %d", n)

		for _, line := range strings.Split(stdout, "\n") {
			if strings.Contains(line, marker) && strings.HasPrefix(strings.TrimSpace(line), "!!") {
				return
			}
		}

		testing.Log(fmt.Sprintf("expected block %d to be flagged but was not found in output:\n%s", n, stdout))
		testing.Fail()
	}
}

// expectNoDifferences returns a comparator verifying the summary reports no
// differences at all.
func expectNoDifferences() test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if !strings.Contains(stdout, "no differences found") {
			testing.Log(fmt.Sprintf("expected \"no differences found\" in output:\n%s", stdout))
			testing.Fail()
		}
	}
}

// expectContains returns a comparator verifying the output contains a substring.
func expectContains(substr string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if !strings.Contains(stdout, substr) {
			testing.Log(fmt.Sprintf("expected substring %q not found in output:\n%s", substr, stdout))
			testing.Fail()
		}
	}
}
