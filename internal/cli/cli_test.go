package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/archlayout/pkg/classify"
	"github.com/matzehuels/archlayout/pkg/config"
	"github.com/matzehuels/archlayout/pkg/graph"
	"github.com/matzehuels/archlayout/pkg/layout"
	"github.com/matzehuels/archlayout/pkg/pipeline"
	"github.com/matzehuels/archlayout/pkg/quality"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv(config.EnvPath, "")

	var logs bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeGraph(t *testing.T, g graph.Graph) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "diagram.json")
	require.NoError(t, graph.WriteGraphFile(g, path))
	return path
}

func sampleGraph() graph.Graph {
	return graph.Graph{
		Nodes: []graph.Node{
			{ID: "web", Signals: graph.Signals{Type: "frontend", Label: "Web App"}},
			{ID: "api", Signals: graph.Signals{Type: "api"}},
			{ID: "db", Signals: graph.Signals{Type: "database"}},
		},
		Edges: []graph.Edge{
			{Source: "web", Target: "api"},
			{Source: "api", Target: "db"},
		},
	}
}

// =============================================================================
// Commands
// =============================================================================

func TestLayoutCommand(t *testing.T) {
	input := writeGraph(t, sampleGraph())

	_, stderr, err := execute(t, "layout", input, "--engine", "fallback")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Layout complete")

	f, err := os.Open(strings.TrimSuffix(input, ".json") + ".layout.json")
	require.NoError(t, err)
	defer f.Close()
	res, err := layout.ReadResult(f)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "fallback", res.EngineUsed)
	assert.Len(t, res.Nodes, 3)
}

func TestLayoutCommandStdout(t *testing.T) {
	input := writeGraph(t, sampleGraph())

	stdout, _, err := execute(t, "layout", input, "-e", "fallback", "-o", "-")
	require.NoError(t, err)
	res, err := layout.ReadResult(strings.NewReader(stdout))
	require.NoError(t, err)
	assert.Equal(t, graph.EngineFallback, res.EngineSelected)
}

func TestLayoutCommandRejectsBadFlags(t *testing.T) {
	input := writeGraph(t, sampleGraph())

	_, _, err := execute(t, "layout", input, "--engine", "force")
	assert.Error(t, err)
	_, _, err = execute(t, "layout", input, "--direction", "diagonal")
	assert.Error(t, err)
	_, _, err = execute(t, "layout", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestGroupedCommand(t *testing.T) {
	input := writeGraph(t, sampleGraph())

	stdout, stderr, err := execute(t, "grouped", input, "-e", "fallback", "-o", "-")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Grouped layout complete")

	var view pipeline.Grouped
	require.NoError(t, json.Unmarshal([]byte(stdout), &view))
	assert.Equal(t, 3, view.Classified)
	require.Len(t, view.Containers, 3)
	assert.Equal(t, "layer_0", view.Containers[0].ID)
	assert.Equal(t, "layer_3", view.Containers[1].ID)
	assert.Equal(t, "layer_6", view.Containers[2].ID)
}

func TestClassifyCommand(t *testing.T) {
	input := writeGraph(t, sampleGraph())

	stdout, _, err := execute(t, "classify", input, "-o", "-")
	require.NoError(t, err)
	g, err := graph.ReadGraph(strings.NewReader(stdout))
	require.NoError(t, err)
	require.Equal(t, 3, g.Len())
	assert.Equal(t, int(classify.LayerClient), g.Nodes[0].Layer())
	assert.Equal(t, int(classify.LayerService), g.Nodes[1].Layer())
	assert.Equal(t, int(classify.LayerData), g.Nodes[2].Layer())
}

func TestClassifyExplain(t *testing.T) {
	input := writeGraph(t, sampleGraph())

	stdout, _, err := execute(t, "classify", input, "--explain")
	require.NoError(t, err)
	for _, want := range []string{"Node", "Layer", "web", "client", "data", "type/"} {
		assert.Contains(t, stdout, want)
	}
	_, err = os.Stat(strings.TrimSuffix(input, ".json") + ".classified.json")
	assert.True(t, os.IsNotExist(err), "--explain alone must not write the graph")
}

func TestContainersCommand(t *testing.T) {
	layer := func(i int) *int { return &i }
	input := writeGraph(t, graph.Graph{Nodes: []graph.Node{
		{ID: "a", LayerIndex: layer(0), Position: &graph.Position{X: 0, Y: 0}},
		{ID: "b", LayerIndex: layer(6), Position: &graph.Position{X: 500, Y: 0}},
		{ID: "c", Position: &graph.Position{X: 900, Y: 0}},
	}})

	stdout, stderr, err := execute(t, "containers", input, "-o", "-")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Built 2 containers")

	var out struct {
		Containers []struct {
			ID string `json:"id"`
		} `json:"containers"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	require.Len(t, out.Containers, 2)
	assert.Equal(t, "layer_0", out.Containers[0].ID)
}

func TestQualityCommand(t *testing.T) {
	input := writeGraph(t, graph.Graph{Nodes: []graph.Node{
		{ID: "a", Position: &graph.Position{X: 0, Y: 0}},
		{ID: "b", Position: &graph.Position{X: 0, Y: 0}},
	}})

	stdout, _, err := execute(t, "quality", input, "--json")
	require.NoError(t, err)
	var rep quality.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &rep))
	assert.Equal(t, 1, rep.OverlappingPairs)

	stdout, _, err = execute(t, "quality", input)
	require.NoError(t, err)
	assert.Contains(t, stdout, "overlaps")
}

func TestConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archlayout.toml")
	require.NoError(t, os.WriteFile(path, []byte("[layout]\ndirection = \"TB\"\n"), 0o644))

	stdout, _, err := execute(t, "--config", path, "config")
	require.NoError(t, err)
	assert.Contains(t, stdout, `direction = "TB"`)

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[layout]\nbogus = 1\n"), 0o644))
	_, _, err = execute(t, "--config", bad, "config")
	assert.Error(t, err)
}

func TestCachePathCommand(t *testing.T) {
	stdout, _, err := execute(t, "cache", "path")
	require.NoError(t, err)
	assert.Equal(t, config.Default().Cache.Dir, strings.TrimSpace(stdout))
}

func TestCacheClearFileBackend(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(t.TempDir(), "archlayout.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("[cache]\nbackend = \"file\"\ndir = \""+filepath.ToSlash(dir)+"\"\n"), 0o644))
	input := writeGraph(t, sampleGraph())

	_, stderr, err := execute(t, "--config", cfg, "layout", input, "-e", "fallback", "-o", "-")
	require.NoError(t, err)
	assert.Contains(t, stderr, "fresh")

	_, stderr, err = execute(t, "--config", cfg, "layout", input, "-e", "fallback", "-o", "-")
	require.NoError(t, err)
	assert.Contains(t, stderr, "cached")

	_, stderr, err = execute(t, "--config", cfg, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Cleared 1 cached entries")
}

// =============================================================================
// Helpers
// =============================================================================

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "dir/g.layout.json", outputPath("dir/g.json", "", "layout"))
	assert.Equal(t, "out.json", outputPath("dir/g.json", "out.json", "layout"))
	assert.Empty(t, outputPath("dir/g.json", "-", "layout"))
}

func TestLayoutFlags(t *testing.T) {
	base := graph.Options{}.WithDefaults()

	f := layoutFlags{direction: "tb", engine: "dagre", nodeWidth: 200, noMonitor: true}
	opts, err := f.options(base)
	require.NoError(t, err)
	assert.Equal(t, graph.TopToBottom, opts.Direction)
	assert.Equal(t, graph.EngineLayered, opts.Engine)
	assert.Equal(t, 200.0, opts.NodeWidth)
	assert.Equal(t, base.NodeHeight, opts.NodeHeight)
	assert.False(t, opts.MonitoringEnabled())

	_, err = (&layoutFlags{direction: "up"}).options(base)
	assert.Error(t, err)
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	dir, err := cacheDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "archlayout"), dir)
}

// =============================================================================
// Explain browser
// =============================================================================

func TestExplainModelNavigation(t *testing.T) {
	g := sampleGraph()
	m := NewExplainModel(classify.New().ExplainAll(g.Nodes, g.Edges))
	m.Height = 2

	key := func(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

	next, _ := m.Update(key("j"))
	m = next.(ExplainModel)
	next, _ = m.Update(key("j"))
	m = next.(ExplainModel)
	assert.Equal(t, 2, m.Cursor)
	assert.Equal(t, 1, m.Offset)

	next, _ = m.Update(key("j"))
	assert.Equal(t, 2, next.(ExplainModel).Cursor, "cursor stops at the last node")

	next, _ = m.Update(key("g"))
	assert.Zero(t, next.(ExplainModel).Cursor)

	view := m.View()
	assert.Contains(t, view, "db")
	assert.Contains(t, view, "type/data")

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestExplainTableSource(t *testing.T) {
	g := graph.Graph{Nodes: []graph.Node{{ID: "mystery"}}}
	out := explainTable(classify.New().ExplainAll(g.Nodes, nil))
	assert.Contains(t, out, classify.FallbackDefault)
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "version: ")
	assert.Contains(t, stdout, "go: go")
}
