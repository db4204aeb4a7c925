package runtime

import (
	"bytes"
	"context"
	"errors"
	"os"
	"reflect"
	"testing"
)

type recordingPlugin struct {
	applied int
	err     error
}

func (p *recordingPlugin) Apply(project *Project) error {
	p.applied++
	if p.err != nil {
		return p.err
	}
	_, err := Register[countingTask](project.Tasks(), "count")
	return err
}

func TestProject_ApplyIsIdempotent(t *testing.T) {
	project := NewProject("demo", t.TempDir())
	plugin := &recordingPlugin{}

	if err := project.Apply("demo.counting", plugin); err != nil {
		t.Fatalf("First Apply failed: %v", err)
	}
	if err := project.Apply("demo.counting", plugin); err != nil {
		t.Fatalf("Second Apply failed: %v", err)
	}

	if plugin.applied != 1 {
		t.Errorf("Expected plugin to be applied once, got %d", plugin.applied)
	}
	if project.Tasks().Len() != 1 {
		t.Errorf("Expected 1 task, got %d", project.Tasks().Len())
	}
	if !project.HasPlugin("demo.counting") {
		t.Error("Expected HasPlugin to report the applied plugin")
	}
}

func TestProject_ApplyFailure(t *testing.T) {
	project := NewProject("demo", t.TempDir())
	boom := errors.New("boom")

	err := project.Apply("demo.broken", &recordingPlugin{err: boom})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected wrapped plugin error, got %v", err)
	}
	if project.HasPlugin("demo.broken") {
		t.Error("A failed plugin must not be recorded as applied")
	}

	if err := project.Apply("demo.nil", nil); err == nil {
		t.Error("Expected error for nil plugin")
	}
}

func TestProject_PluginOrder(t *testing.T) {
	project := NewProject("demo", t.TempDir())
	for _, id := range []string{"b", "a", "c"} {
		if err := project.Apply(id, &emptyPlugin{}); err != nil {
			t.Fatalf("Apply %s failed: %v", id, err)
		}
	}

	if got := project.Plugins(); !reflect.DeepEqual(got, []string{"b", "a", "c"}) {
		t.Errorf("Expected application order, got %v", got)
	}
}

func TestProject_Properties(t *testing.T) {
	seed := map[string]any{
		"env": "dev",
		"deploy": map[string]any{
			"region": "eu-west-1",
		},
	}
	project := NewProject("demo", t.TempDir(), WithProperties(seed))

	v, ok := project.Property("deploy.region")
	if !ok || v != "eu-west-1" {
		t.Errorf("Expected deploy.region=eu-west-1, got %v (found=%v)", v, ok)
	}
	if _, ok := project.Property("deploy.zone"); ok {
		t.Error("Expected deploy.zone to be missing")
	}

	if err := project.SetProperty("deploy.region", "us-east-1"); err != nil {
		t.Fatalf("SetProperty failed: %v", err)
	}
	if err := project.SetProperty("release.channel", "beta"); err != nil {
		t.Fatalf("SetProperty failed: %v", err)
	}

	if v, _ := project.Property("deploy.region"); v != "us-east-1" {
		t.Errorf("Expected overridden region, got %v", v)
	}
	if v, _ := project.Property("release.channel"); v != "beta" {
		t.Errorf("Expected nested property to be created, got %v", v)
	}

	if seed["deploy"].(map[string]any)["region"] != "eu-west-1" {
		t.Error("SetProperty must not write into the seed map")
	}
	if project.Properties()["env"] != "dev" {
		t.Errorf("Expected env=dev in Properties(), got %v", project.Properties())
	}
}

func TestProject_DottedPropertyKeys(t *testing.T) {
	project := NewProject("demo", t.TempDir(), WithProperties(map[string]any{
		"deploy.region": "eu",
		"deploy.zone":   "a",
		"env":           "dev",
	}))

	if v, ok := project.Property("deploy.region"); !ok || v != "eu" {
		t.Errorf("Expected deploy.region=eu, got %v (found=%v)", v, ok)
	}
	deploy, ok := project.Properties()["deploy"].(map[string]any)
	if !ok || deploy["zone"] != "a" {
		t.Errorf("Expected dotted keys to nest under deploy, got %v", project.Properties())
	}

	if err := project.SetProperty("deploy.region", "us"); err != nil {
		t.Fatalf("SetProperty failed: %v", err)
	}
	if v, _ := project.Property("deploy.region"); v != "us" {
		t.Errorf("Expected override to replace the dotted key, got %v", v)
	}
}

func TestProject_SetPropertiesConflict(t *testing.T) {
	project := NewProject("demo", t.TempDir())

	err := project.SetProperties(map[string]any{
		"deploy":        "eu",
		"deploy.region": "us",
	})
	if err == nil {
		t.Fatal("Expected error when a dotted key goes through a scalar")
	}
	if v, _ := project.Property("deploy"); v != "eu" {
		t.Errorf("Expected keys before the conflict to be set, got %v", v)
	}
}

func TestProject_EmptyProperties(t *testing.T) {
	project := NewProject("demo", t.TempDir())
	if len(project.Properties()) != 0 {
		t.Errorf("Expected no properties, got %v", project.Properties())
	}
}

func TestExecution_Context(t *testing.T) {
	var out bytes.Buffer
	project := NewProject("demo", t.TempDir(),
		WithStdout(&out),
		WithProperties(map[string]any{"env": "ci"}))

	type ctxKey struct{}
	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), ctxKey{}, "outer"))
	exec := NewExecution(ctx, "build-1", project, "count")

	if exec.ID == "" {
		t.Error("Expected execution ID")
	}
	if exec.Value("env") != "ci" {
		t.Errorf("Expected property lookup through Value, got %v", exec.Value("env"))
	}
	if exec.Value(ctxKey{}) != "outer" {
		t.Errorf("Expected wrapped context value, got %v", exec.Value(ctxKey{}))
	}
	if exec.Stdout() != &out {
		t.Error("Expected Stdout to be the project writer")
	}

	cancel()
	<-exec.Done()
	if !errors.Is(exec.Err(), context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", exec.Err())
	}

	other := exec.WithContext(context.Background())
	if other.Err() != nil || other.ID != exec.ID {
		t.Error("WithContext should keep identity and swap the context")
	}
}

func TestExecution_NoProject(t *testing.T) {
	exec := NewExecution(nil, "build-1", nil, "count")
	if exec.Err() != nil {
		t.Errorf("Expected background context, got %v", exec.Err())
	}
	if exec.Value("env") != nil {
		t.Error("Expected nil value without a project")
	}
	if exec.Stdout() != os.Stdout {
		t.Error("Expected Stdout to fall back to os.Stdout without a project")
	}
	if exec.Logger() == nil {
		t.Error("Expected a logger even without a project")
	}
}

type emptyPlugin struct{}

func (emptyPlugin) Apply(*Project) error { return nil }
