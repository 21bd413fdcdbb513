package immutable

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"loam.dev/pkg/persistent/hashmap"
)

type form struct {
	Name   string
	Tags   []string
	Fields map[string]string
}

type page struct {
	Title string
	Form  form
}

var (
	formLens = Lens[page, form]{
		Get: func(p page) form { return p.Form },
		Set: func(p page, f form) page { p.Form = f; return p },
	}
	tagsLens = Lens[form, []string]{
		Get: func(f form) []string { return f.Tags },
		Set: func(f form, t []string) form { f.Tags = t; return f },
	}
	fieldsLens = Lens[form, map[string]string]{
		Get: func(f form) map[string]string { return f.Fields },
		Set: func(f form, m map[string]string) form { f.Fields = m; return f },
	}
)

func newPage() Value[page] {
	return Of(page{
		Title: "edit",
		Form: form{
			Name:   "ada",
			Tags:   []string{"a", "b"},
			Fields: map[string]string{"x": "1"},
		},
	})
}

func TestSet_LeavesOriginalUnchanged(t *testing.T) {
	v1 := newPage()
	before := v1.Get()
	snapshot := page{
		Title: before.Title,
		Form: form{
			Name:   before.Form.Name,
			Tags:   append([]string(nil), before.Form.Tags...),
			Fields: map[string]string{"x": "1"},
		},
	}

	v2 := Set(v1, Compose(Compose(formLens, tagsLens), Index[string](1)), "z")
	v3 := Set(v2, Compose(Compose(formLens, fieldsLens), Key[string, string]("y")), "2")

	if diff := cmp.Diff(snapshot, v1.Get()); diff != "" {
		t.Errorf("original changed (-want +got):\n%s", diff)
	}
	want := page{
		Title: "edit",
		Form: form{
			Name:   "ada",
			Tags:   []string{"a", "z"},
			Fields: map[string]string{"x": "1", "y": "2"},
		},
	}
	if diff := cmp.Diff(want, v3.Get()); diff != "" {
		t.Errorf("updated value (-want +got):\n%s", diff)
	}
	if _, ok := v2.Get().Form.Fields["y"]; ok {
		t.Errorf("Set through Key wrote into an older snapshot")
	}
}

func TestUpdateAndView(t *testing.T) {
	name := Compose(formLens, Lens[form, string]{
		Get: func(f form) string { return f.Name },
		Set: func(f form, s string) form { f.Name = s; return f },
	})
	v := Update(newPage(), name, func(s string) string { return s + "!" })
	if got := View(v, name); got != "ada!" {
		t.Errorf("View -> %q, want %q", got, "ada!")
	}
	if got := View(v, Identity[page]()).Title; got != "edit" {
		t.Errorf("Identity lens -> title %q, want %q", got, "edit")
	}
}

func TestIndex_OutOfRangeGet(t *testing.T) {
	if got := Index[int](3).Get([]int{1}); got != 0 {
		t.Errorf("Index(3).Get -> %v, want 0", got)
	}
}

func TestWith(t *testing.T) {
	v1 := Of(1)
	v2 := v1.With(func(i int) int { return i + 1 })
	if v1.Get() != 1 || v2.Get() != 2 {
		t.Errorf("With -> (%d, %d), want (1, 2)", v1.Get(), v2.Get())
	}
}

func TestEntry(t *testing.T) {
	type registry struct{ Forms hashmap.Map[string, form] }
	formsLens := Lens[registry, hashmap.Map[string, form]]{
		Get: func(r registry) hashmap.Map[string, form] { return r.Forms },
		Set: func(r registry, m hashmap.Map[string, form]) registry { r.Forms = m; return r },
	}
	nameOf := func(key string) Lens[registry, string] {
		return Compose(Compose(formsLens, Entry[string, form](key)), Lens[form, string]{
			Get: func(f form) string { return f.Name },
			Set: func(f form, n string) form { f.Name = n; return f },
		})
	}

	v1 := Of(registry{hashmap.Strings[form]().Assoc("a", form{Name: "ada"})})
	v2 := Set(v1, nameOf("a"), "grace")
	v3 := Set(v2, nameOf("b"), "bo")

	if got := View(v1, nameOf("a")); got != "ada" {
		t.Errorf("original changed: name = %q", got)
	}
	if got := View(v3, nameOf("a")); got != "grace" {
		t.Errorf("name of a = %q, want grace", got)
	}
	if got := View(v3, nameOf("b")); got != "bo" {
		t.Errorf("name of b = %q, want bo", got)
	}
	if got := View(v2, nameOf("b")); got != "" {
		t.Errorf("absent entry has name %q", got)
	}
	if n := v3.Get().Forms.Len(); n != 2 {
		t.Errorf("Len() = %d, want 2", n)
	}
}
