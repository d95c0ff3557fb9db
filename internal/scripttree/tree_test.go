package scripttree

import (
	"reflect"
	"testing"

	"github.com/nigelgwork/ignition-module-python3-sub000/internal/client"
)

func scripts() []client.ScriptMetadata {
	return []client.ScriptMetadata{
		{Name: "zeta", FolderPath: ""},
		{Name: "alpha", FolderPath: "/"},
		{Name: "tags", FolderPath: "Utils/Tags"},
		{Name: "db", FolderPath: "Utils"},
		{Name: "daily", FolderPath: "Reports//Daily/"},
		{Name: "Beta", FolderPath: "Utils/Tags"},
	}
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"/", nil},
		{"  ", nil},
		{"A", []string{"A"}},
		{"A/B/C", []string{"A", "B", "C"}},
		{"/A//B/", []string{"A", "B"}},
		{" A / B ", []string{"A", "B"}},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			if got := SplitPath(tc.in); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("SplitPath(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestBuild_Structure(t *testing.T) {
	root := Build(scripts())

	if root.Name != RootName {
		t.Errorf("expected root name %q, got %q", RootName, root.Name)
	}

	var names []string
	for _, c := range root.Children {
		names = append(names, c.Name)
	}
	want := []string{"Reports", "Utils", "alpha", "zeta"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("root children = %v, want %v", names, want)
	}

	utils := root.Children[1]
	if utils.Path != "Utils" || !utils.IsFolder() {
		t.Errorf("unexpected Utils node %+v", utils)
	}
	if len(utils.Children) != 2 || utils.Children[0].Name != "Tags" || utils.Children[1].Name != "db" {
		t.Fatalf("expected Tags folder then db script, got %+v", utils.Children)
	}

	tags := utils.Children[0]
	if tags.Path != "Utils/Tags" {
		t.Errorf("expected nested path Utils/Tags, got %q", tags.Path)
	}
	if tags.Children[0].Name != "Beta" || tags.Children[1].Name != "tags" {
		t.Errorf("expected case-insensitive order Beta, tags; got %s, %s", tags.Children[0].Name, tags.Children[1].Name)
	}
}

func TestBuild_SharesFolderAcrossSpellings(t *testing.T) {
	root := Build([]client.ScriptMetadata{
		{Name: "a", FolderPath: "X/Y"},
		{Name: "b", FolderPath: "/X/Y/"},
	})

	folders, scripts := root.Count()
	if folders != 2 || scripts != 2 {
		t.Errorf("expected 2 folders and 2 scripts, got %d and %d", folders, scripts)
	}
}

func TestBuild_Empty(t *testing.T) {
	root := Build(nil)
	if len(root.Children) != 0 {
		t.Errorf("expected empty root, got %d children", len(root.Children))
	}
}

func TestFlatten(t *testing.T) {
	root := Build(scripts())

	all := root.Flatten(nil)
	if len(all) != 10 {
		t.Errorf("expected 10 rows fully expanded, got %d", len(all))
	}

	collapsed := root.Flatten(func(string) bool { return false })
	if len(collapsed) != 4 {
		t.Errorf("expected 4 top-level rows collapsed, got %d", len(collapsed))
	}

	onlyUtils := root.Flatten(func(p string) bool { return p == "Utils" })
	var depths []int
	for _, r := range onlyUtils {
		depths = append(depths, r.Depth)
	}
	if !reflect.DeepEqual(depths, []int{0, 0, 1, 1, 0, 0}) {
		t.Errorf("unexpected depths %v", depths)
	}
}

func TestFind(t *testing.T) {
	root := Build(scripts())

	n := root.Find("daily")
	if n == nil || n.Script == nil || n.Path != "Reports/Daily" {
		t.Fatalf("expected daily under Reports/Daily, got %+v", n)
	}
	if root.Find("Utils") != nil {
		t.Error("expected folders not to match Find")
	}
	if root.Find("nope") != nil {
		t.Error("expected nil for unknown script")
	}
}

func TestFolderPaths(t *testing.T) {
	got := FolderPaths(scripts())
	want := []string{"Reports", "Reports/Daily", "Utils", "Utils/Tags"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FolderPaths() = %v, want %v", got, want)
	}
}
