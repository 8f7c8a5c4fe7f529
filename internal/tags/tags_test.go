package tags

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeTag(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestResolveFlatTag(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTag(t, dir, "planks.json", `{"values": ["minecraft:oak_planks", "minecraft:birch_planks"]}`)

	g, err := Load(dir, "minecraft")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	got := g.Resolve("minecraft:planks")
	want := []string{"birch_planks", "oak_planks"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Resolve = %v, want %v", got, want)
	}
}

func TestResolveNestedTags(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTag(t, dir, "logs.json", `{"values": ["#minecraft:oak_logs", "minecraft:crimson_stem"]}`)
	writeTag(t, dir, "oak_logs.json", `{"values": ["minecraft:oak_log", "minecraft:oak_wood"]}`)
	writeTag(t, dir, "mineable/axe.json", `{"values": ["#minecraft:logs"]}`)

	g, err := Load(dir, "minecraft")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []string{"crimson_stem", "oak_log", "oak_wood"}
	if got := g.Resolve("minecraft:logs"); !reflect.DeepEqual(got, want) {
		t.Fatalf("Resolve(logs) = %v, want %v", got, want)
	}
	// Subdirectory tags are addressed with slash segments.
	if got := g.Resolve("minecraft:mineable/axe"); !reflect.DeepEqual(got, want) {
		t.Fatalf("Resolve(mineable/axe) = %v, want %v", got, want)
	}
}

func TestResolveStructuredEntries(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTag(t, dir, "wool.json", `{"values": [{"id": "minecraft:white_wool", "required": false}, "minecraft:red_wool"]}`)

	g, err := Load(dir, "minecraft")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []string{"red_wool", "white_wool"}
	if got := g.Resolve("minecraft:wool"); !reflect.DeepEqual(got, want) {
		t.Fatalf("Resolve = %v, want %v", got, want)
	}
}

func TestResolveSkipsForeignEntries(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTag(t, dir, "mixed.json", `{"values": ["minecraft:stone", "othermod:gadget", "bare_name", "", 7]}`)

	g, err := Load(dir, "minecraft")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []string{"stone"}
	if got := g.Resolve("minecraft:mixed"); !reflect.DeepEqual(got, want) {
		t.Fatalf("Resolve = %v, want %v", got, want)
	}
}

func TestResolveUnknownTag(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTag(t, dir, "planks.json", `{"values": []}`)

	g, err := Load(dir, "minecraft")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := g.Resolve("minecraft:absent"); len(got) != 0 {
		t.Fatalf("Resolve(absent) = %v, want empty", got)
	}
}

func TestResolveCycleContributesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTag(t, dir, "a.json", `{"values": ["minecraft:stone", "#minecraft:b"]}`)
	writeTag(t, dir, "b.json", `{"values": ["minecraft:dirt", "#minecraft:a"]}`)

	g, err := Load(dir, "minecraft")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []string{"dirt", "stone"}
	if got := g.Resolve("minecraft:a"); !reflect.DeepEqual(got, want) {
		t.Fatalf("Resolve(a) = %v, want %v", got, want)
	}

	cycles := g.Cycles()
	if !reflect.DeepEqual(cycles, []string{"minecraft:a"}) {
		t.Fatalf("Cycles = %v, want [minecraft:a]", cycles)
	}
}

func TestResolveMemoized(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTag(t, dir, "logs.json", `{"values": ["#minecraft:oak_logs"]}`)
	writeTag(t, dir, "oak_logs.json", `{"values": ["minecraft:oak_log"]}`)

	g, err := Load(dir, "minecraft")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	first := g.Resolve("minecraft:logs")
	second := g.Resolve("minecraft:logs")
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated Resolve differs: %v vs %v", first, second)
	}
}

// For an acyclic tag tree the expansion must not depend on the order tags
// are asked for.
func TestResolveOrderIndependent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTag(t, dir, "all.json", `{"values": ["#minecraft:logs", "#minecraft:planks"]}`)
	writeTag(t, dir, "logs.json", `{"values": ["minecraft:oak_log"]}`)
	writeTag(t, dir, "planks.json", `{"values": ["minecraft:oak_planks"]}`)

	forward, err := Load(dir, "minecraft")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	backward, err := Load(dir, "minecraft")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	for _, id := range []string{"minecraft:logs", "minecraft:planks", "minecraft:all"} {
		forward.Resolve(id)
	}
	for _, id := range []string{"minecraft:all", "minecraft:planks", "minecraft:logs"} {
		backward.Resolve(id)
	}

	if a, b := forward.ResolveAll(), backward.ResolveAll(); !reflect.DeepEqual(a, b) {
		t.Fatalf("expansion depends on resolve order: %v vs %v", a, b)
	}
}

func TestInvert(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTag(t, dir, "planks.json", `{"values": ["minecraft:oak_planks"]}`)
	writeTag(t, dir, "mineable/axe.json", `{"values": ["minecraft:oak_planks", "minecraft:crafting_table"]}`)

	g, err := Load(dir, "minecraft")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	g.ResolveAll()

	got := g.Invert()
	want := map[string][]string{
		"oak_planks":     {"minecraft:mineable/axe", "minecraft:planks"},
		"crafting_table": {"minecraft:mineable/axe"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Invert = %v, want %v", got, want)
	}
}

func TestLoadMissingDir(t *testing.T) {
	t.Parallel()

	g, err := Load(filepath.Join(t.TempDir(), "absent"), "minecraft")
	if !errors.Is(err, ErrNoTagTree) {
		t.Fatalf("err = %v, want ErrNoTagTree", err)
	}
	if g == nil {
		t.Fatal("graph must be usable after ErrNoTagTree")
	}
	if g.Len() != 0 {
		t.Fatalf("Len = %d, want 0", g.Len())
	}
	if got := g.Resolve("minecraft:planks"); len(got) != 0 {
		t.Fatalf("Resolve on empty graph = %v, want empty", got)
	}
}

func TestLoadMalformedTagFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTag(t, dir, "broken.json", `{"values": [`)

	if _, err := Load(dir, "minecraft"); err == nil {
		t.Fatal("expected error for malformed tag file")
	}
}

func TestLen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTag(t, dir, "planks.json", `{"values": []}`)
	writeTag(t, dir, "mineable/axe.json", `{"values": []}`)

	g, err := Load(dir, "minecraft")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if g.Len() != 2 {
		t.Fatalf("Len = %d, want 2", g.Len())
	}
}
