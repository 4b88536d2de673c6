package tests_test

import (
	"testing"

	"github.com/containerd/nerdctl/mod/tigron/expect"
	"github.com/containerd/nerdctl/mod/tigron/test"

	"github.com/farcloser/mdfdiff/tests/testutils"
)

func TestAnalyze(t *testing.T) {
	testCase := testutils.Setup()

	testCase.SubTests = []*test.Case{
		{
			Description: "the silence block has nothing to track and is flagged",
			Setup: func(data test.Data, helpers test.Helpers) {
				data.Labels().Set("layout", testutils.WriteLayout(data, helpers))
				data.Labels().Set("wav", testutils.WriteSilentSineWav(data, "signal.wav", 1000))
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command(
					"analyze",
					"--layout", data.Labels().Get("layout"),
					data.Labels().Get("wav"),
				)
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output:   expectBlockFlagged(0),
				}
			},
		},
		{
			Description: "missing layout file fails with a non-zero exit code",
			Setup: func(data test.Data, helpers test.Helpers) {
				data.Labels().Set("wav", testutils.WriteSilentSineWav(data, "signal.wav", 1000))
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command(
					"analyze",
					"--layout", "/nonexistent/layout.mdf",
					data.Labels().Get("wav"),
				)
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeGenericFail,
				}
			},
		},
		{
			Description: "wrong argument count is rejected",
			Command: func(_ test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("analyze", "--layout", "irrelevant.mdf")
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeGenericFail,
				}
			},
		},
	}

	testCase.Run(t)
}
