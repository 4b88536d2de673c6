package tests_test

import (
	"path/filepath"
	"testing"

	"github.com/containerd/nerdctl/mod/tigron/expect"
	"github.com/containerd/nerdctl/mod/tigron/test"

	"github.com/farcloser/mdfdiff/tests/testutils"
)

func TestConvert(t *testing.T) {
	testCase := testutils.Setup()

	testCase.SubTests = []*test.Case{
		{
			Description: "converting a WAV produces a canonical output the CLI reports on",
			Setup: func(data test.Data, helpers test.Helpers) {
				data.Labels().Set("input", testutils.WriteSilentSineWav(data, "source.wav", 1000))
				data.Labels().Set("output", filepath.Join(data.TempDir(), "converted.wav"))
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command(
					"convert",
					data.Labels().Get("input"),
					data.Labels().Get("output"),
				)
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output:   expectContains("wrote"),
				}
			},
		},
		{
			Description: "nonexistent source file fails",
			Command:     test.Command("convert", "/nonexistent/source.wav", "/tmp/out.wav"),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
	}

	testCase.Run(t)
}
