package cli_test

import (
	"testing"

	"github.com/calvinalkan/s3dedup/internal/cli"
)

func Test_Clean_Requires_Bucket(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("clean")
	cli.AssertContains(t, stderr, "--bucket is required")
}

func Test_Clean_Rejects_Unknown_Rule(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("clean", "--bucket=test", "--rules=strip-spaces,bogus-rule")
	cli.AssertContains(t, stderr, "unknown cleanup rule")
	cli.AssertContains(t, stderr, "bogus-rule")
}

func Test_Clean_Empty_Index_Produces_Script(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("clean", "--bucket=test")
	cli.AssertContains(t, stdout, "#!/usr/bin/env bash")
}
