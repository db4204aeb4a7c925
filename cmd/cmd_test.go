package cmd

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kerstholt/taskplug/plugins/myplugin"
	"github.com/kerstholt/taskplug/runtime"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	projectDir, buildFileName, pluginIDs, logLevel, propertyPairs = ".", "", nil, "", nil
	showAllTasks, continueOnFailure, remoteURL = false, false, ""

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func writeBuildFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "build.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write build file: %v", err)
	}
	return dir
}

func TestRunCommand_PrintsGreeting(t *testing.T) {
	dir := writeBuildFile(t, "name: demo\nplugins:\n  - "+myplugin.ID+"\n")

	out, logs, err := execute(t, "", "-d", dir, "run", "mPT")
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, logs)
	}
	if out != "Hello from my custom plugin!\n" {
		t.Errorf("Expected greeting once on stdout, got %q", out)
	}
	if !strings.Contains(logs, "Build successful") {
		t.Errorf("Expected build summary in logs, got %q", logs)
	}
}

func TestRunCommand_PluginFlag(t *testing.T) {
	out, _, err := execute(t, "", "-d", t.TempDir(), "--plugin", myplugin.ID, "--log-level", "error", "run", myplugin.TaskName)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out != myplugin.Greeting+"\n" {
		t.Errorf("Expected greeting, got %q", out)
	}
}

func TestRunCommand_SkippedByProperty(t *testing.T) {
	dir := writeBuildFile(t, `
plugins: [`+myplugin.ID+`]
tasks:
  myPluginTask:
    onlyIf:
      - properties.greet == "yes"
`)

	out, _, err := execute(t, "", "-d", dir, "run", "myPluginTask")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out != "" {
		t.Errorf("Expected task to be skipped, got %q", out)
	}

	out, _, err = execute(t, "", "-d", dir, "-P", "greet=yes", "run", "myPluginTask")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out != myplugin.Greeting+"\n" {
		t.Errorf("Expected greeting with -P greet=yes, got %q", out)
	}
}

func TestRunCommand_UnknownTask(t *testing.T) {
	_, _, err := execute(t, "", "-d", t.TempDir(), "run", "deploy")
	if err == nil || !strings.Contains(err.Error(), "task not found") {
		t.Errorf("Expected task not found error, got %v", err)
	}
}

func TestTasksCommand(t *testing.T) {
	dir := writeBuildFile(t, "name: demo\nplugins: ["+myplugin.ID+"]\n")

	out, _, err := execute(t, "", "-d", dir, "tasks")
	if err != nil {
		t.Fatalf("tasks failed: %v", err)
	}

	want := `Tasks runnable from project 'demo'
----------------------------------

My custom tasks
---------------
myPluginTask - Task #1 from my custom gradle plugin
`
	if out != want {
		t.Errorf("Unexpected listing:\n%s\nwant:\n%s", out, want)
	}
}

func TestWriteTaskListing(t *testing.T) {
	infos := []runtime.TaskInfo{
		{Name: "build", Group: "build", Description: "Assembles the project"},
		{Name: "helper"},
		{Name: "check", Group: "verification"},
	}

	var buf bytes.Buffer
	writeTaskListing(&buf, "demo", infos, false)
	if strings.Contains(buf.String(), "helper") {
		t.Errorf("Ungrouped tasks should be hidden without --all:\n%s", buf.String())
	}

	buf.Reset()
	writeTaskListing(&buf, "demo", infos, true)
	got := buf.String()
	if !strings.Contains(got, "Other tasks\n-----------\nhelper\n") {
		t.Errorf("Expected ungrouped tasks under 'Other tasks':\n%s", got)
	}
	if strings.Index(got, "build\n-----") > strings.Index(got, "verification") {
		t.Errorf("Expected groups in sorted order:\n%s", got)
	}

	buf.Reset()
	writeTaskListing(&buf, "empty", nil, false)
	if !strings.HasSuffix(buf.String(), "\nNo tasks\n") {
		t.Errorf("Expected 'No tasks', got %q", buf.String())
	}
}

func TestJSONCommand(t *testing.T) {
	out, _, err := execute(t, "b: 2\na: [1, 2, 3]\n", "json")
	if err != nil {
		t.Fatalf("json failed: %v", err)
	}
	if out != `{"a":[1,2,3],"b":2}`+"\n" {
		t.Errorf("Unexpected output %q", out)
	}

	path := filepath.Join(t.TempDir(), "doc.json")
	os.WriteFile(path, []byte(`{"a": 1}`), 0o644)
	out, _, err = execute(t, "", "json", path)
	if err != nil {
		t.Fatalf("json failed: %v", err)
	}
	if out != `{"a":1}`+"\n" {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestRunCommand_BuildFileFlag(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ci.yaml"), []byte("plugins: ["+myplugin.ID+"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, "", "-d", dir, "-b", "ci.yaml", "run", "mPT")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out != myplugin.Greeting+"\n" {
		t.Errorf("Expected greeting, got %q", out)
	}

	_, _, err = execute(t, "", "-d", dir, "-b", "../ci.yaml", "run", "mPT")
	if err == nil || !strings.Contains(err.Error(), "path traversal") {
		t.Errorf("Expected build file outside the project to be rejected, got %v", err)
	}
}

func startDaemon(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	g := gin.New()
	spec := runtime.ProjectSpec{Name: "remote", Plugins: []string{myplugin.ID}}
	runtime.NewHTTPHandler(runtime.NewApp(pluginRegistry, nil), spec, runtime.NewExecutor(nil), g)

	server := httptest.NewServer(g)
	t.Cleanup(server.Close)
	return server.URL
}

func TestRemoteTasksCommand_AllFlag(t *testing.T) {
	url := startDaemon(t)
	dir := writeBuildFile(t, "name: local\n")

	out, _, err := execute(t, "", "-d", dir, "remote", "tasks", "--all", "--url", url)
	if err != nil {
		t.Fatalf("remote tasks --all failed: %v", err)
	}
	if !showAllTasks {
		t.Error("Expected --all to be set on remote tasks")
	}
	if !strings.Contains(out, "myPluginTask - Task #1 from my custom gradle plugin") {
		t.Errorf("Expected remote listing, got:\n%s", out)
	}
}

func TestRemoteRunCommand(t *testing.T) {
	url := startDaemon(t)

	out, _, err := execute(t, "", "-d", t.TempDir(), "remote", "run", "--url", url, "mPT")
	if err != nil {
		t.Fatalf("remote run failed: %v", err)
	}
	if out != myplugin.Greeting+"\n" {
		t.Errorf("Expected remote greeting, got %q", out)
	}
}
