package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprite-ai/warnctx/internal/dataset"
	"github.com/sprite-ai/warnctx/internal/model"
)

// execute runs the root command with fresh flag values and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"build", "resolve", "show", "browse", "serve", "config", "version"} {
		if !names[want] {
			t.Errorf("root command missing subcommand %q", want)
		}
	}
}

func TestVersionOutput(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "warnctx dev (commit none, built unknown)\n", out)
}

func TestConfigCommand(t *testing.T) {
	out, err := execute(t, "config", "--log-level", "off")
	require.NoError(t, err)
	assert.Contains(t, out, "workers: 12")
	assert.Contains(t, out, "introduced_marker: NonActionableWarning")
	assert.Contains(t, out, "level: \"off\"")
}

func TestConfigFileFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warnctx.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 4\nlog:\n  level: error\n"), 0o644))

	out, err := execute(t, "config", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "workers: 4")
}

func TestInvalidLogFormat(t *testing.T) {
	_, err := execute(t, "version", "--log-format", "xml")
	assert.Error(t, err)
}

func TestShowCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json.gz")
	require.NoError(t, dataset.Write(path, []*dataset.Record{
		{
			CommitLink:     "https://github.com/acme/widget/commit/c1",
			FilePath:       "tmp_github/widget/src/file.c",
			LineNumber:     12,
			WarningMessage: "Null pointer dereference",
			RepositoryName: "acme/widget",
			Difftext:       &model.Patch{Added: []model.LineText{{Line: 22, Text: "x"}}, Deleted: []model.LineText{}, ChangeType: model.ChangeModify},
			WarningContext: "int *p = 0;\n*p = 1;",
		},
		{
			CommitLink:     "https://github.com/acme/gadget/commit/c2",
			FilePath:       "tmp_github/gadget/a.c",
			LineNumber:     1,
			RepositoryName: "acme/gadget",
			Difftext:       &model.Patch{Added: []model.LineText{}, Deleted: []model.LineText{}, ChangeType: model.ChangeAdd},
			WarningContext: "x",
		},
	}))

	out, err := execute(t, "show", "--no-color", "--log-level", "off", path)
	require.NoError(t, err)
	assert.Contains(t, out, "== acme/widget tmp_github/widget/src/file.c:12")
	assert.Contains(t, out, "int *p = 0;\n*p = 1;")
	assert.Contains(t, out, "records: 2")

	out, err = execute(t, "show", "--repo", "acme/gadget", "--summary", "--log-level", "off", path)
	require.NoError(t, err)
	assert.Contains(t, out, "records: 1")
	assert.NotContains(t, out, "==")
}

func TestShowMissingFile(t *testing.T) {
	_, err := execute(t, "show", "--log-level", "off", filepath.Join(t.TempDir(), "absent.json.gz"))
	assert.Error(t, err)
}

func TestResolveArgs(t *testing.T) {
	_, err := execute(t, "resolve", "--log-level", "off", "not-a-link", "file.c", "1")
	assert.ErrorIs(t, err, dataset.ErrBadCommitLink)

	_, err = execute(t, "resolve", "--log-level", "off", "https://github.com/acme/widget/commit/c1", "file.c", "zero")
	assert.Error(t, err)
}

// --- git integration ---

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

func git(t *testing.T, dir string, args ...string) string {
	t.Helper()
	full := append([]string{"-C", dir, "-c", "user.name=test", "-c", "user.email=test@example.com", "-c", "commit.gpgsign=false"}, args...)
	out, err := exec.Command("git", full...).CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return strings.TrimSpace(string(out))
}

// widgetClone creates <root>/widget with two commits and returns the hash
// of the second, which changes line 5 of file.c.
func widgetClone(t *testing.T, root string) string {
	t.Helper()
	dir := filepath.Join(root, "widget")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	git(t, dir, "init", "-q")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file.c"), []byte("l1\nl2\nl3\nl4\nl5\nl6\nl7\nl8\n"), 0o644))
	git(t, dir, "add", ".")
	git(t, dir, "commit", "-q", "-m", "add")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "file.c"), []byte("l1\nl2\nl3\nl4\nL5\nl6\nl7\nl8\n"), 0o644))
	git(t, dir, "commit", "-q", "-am", "modify")
	return git(t, dir, "rev-parse", "HEAD")
}

func TestResolveCommand(t *testing.T) {
	requireGit(t)
	root := t.TempDir()
	hash := widgetClone(t, root)
	link := "https://github.com/acme/widget/commit/" + hash

	out, err := execute(t, "resolve", "--log-level", "off", "--repo", filepath.Join(root, "widget"),
		"--format", "json", link, "tmp_github/widget/file.c", "5")
	require.NoError(t, err)

	var got resolveOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "success", got.Outcome)
	assert.Equal(t, "file.c", got.File)
	assert.Equal(t, "historical", got.Mode)
	assert.Equal(t, "l4\nl5\nl6", got.Context)

	out, err = execute(t, "resolve", "--log-level", "off", "--repo", filepath.Join(root, "widget"),
		"--no-color", "--introduced", link, "file.c", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "outcome: success")
	assert.Contains(t, out, "mode: introduced")
	assert.Contains(t, out, "L5")

	out, err = execute(t, "resolve", "--log-level", "off", "--repo", filepath.Join(root, "widget"),
		"--no-color", link, "other.c", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "outcome: file_not_modified")
}

func TestBuildCommand(t *testing.T) {
	requireGit(t)
	work := t.TempDir()
	clones := filepath.Join(work, "clones")
	hash := widgetClone(t, clones)

	input := filepath.Join(work, "ActionableWarning")
	require.NoError(t, os.MkdirAll(input, 0o755))
	warnings := `[
  {"githubCommitLink": "https://github.com/acme/widget/commit/` + hash + `",
   "filePath": "tmp_github/widget/file.c", "lineNumber": "5", "warningMessage": "removed warning", "tool": "cppcheck"},
  {"githubCommitLink": "https://github.com/acme/widget/commit/` + strings.Repeat("0", 40) + `",
   "filePath": "tmp_github/widget/file.c", "lineNumber": 5, "warningMessage": "unknown commit"},
  {"githubCommitLink": "https://github.com/acme/widget/commit/` + hash + `",
   "filePath": "tmp_github/widget/file.c", "lineNumber": 5, "warningMessage": "Please note: ignored"}
]`
	require.NoError(t, os.WriteFile(filepath.Join(input, "warnings.json"), []byte(warnings), 0o644))

	cfgPath := filepath.Join(work, "warnctx.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("clone_dir: "+clones+"\nclone: false\n"), 0o644))
	output := filepath.Join(work, "out.json.gz")

	out, err := execute(t, "build", "--config", cfgPath, "--log-level", "off", "--input", input, "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "records: 1")

	recs, err := dataset.Read(output)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "acme/widget", recs[0].RepositoryName)
	assert.Equal(t, "l4\nl5\nl6", recs[0].WarningContext)
	assert.Equal(t, json.RawMessage(`"cppcheck"`), recs[0].Extra["tool"])

	// A second run loads the existing output.
	require.NoError(t, os.Remove(filepath.Join(input, "warnings.json")))
	out, err = execute(t, "build", "--config", cfgPath, "--log-level", "off", "--input", input, "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "records: 1")
}
