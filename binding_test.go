package forme

import "testing"

func TestBindRejectsCycle(t *testing.T) {
	g := NewBindingGraph()
	if err := g.Bind("a", DefaultPort, "b", DefaultPort, nil); err != nil {
		t.Fatalf("Bind(a->b) = %v, want no error", err)
	}
	if err := g.Bind("b", DefaultPort, "a", DefaultPort, nil); err == nil {
		t.Fatalf("Bind(b->a) after a->b succeeded, want a cycle-rejection error")
	}
}

func TestBindRejectsSelfLoop(t *testing.T) {
	g := NewBindingGraph()
	if err := g.Bind("a", DefaultPort, "a", DefaultPort, nil); err == nil {
		t.Errorf("Bind(a->a) succeeded, want a cycle-rejection error")
	}
}

func TestBindAllowsDiamond(t *testing.T) {
	g := NewBindingGraph()
	if err := g.Bind("a", DefaultPort, "b", DefaultPort, nil); err != nil {
		t.Fatalf("Bind(a->b) = %v", err)
	}
	if err := g.Bind("a", DefaultPort, "c", DefaultPort, nil); err != nil {
		t.Fatalf("Bind(a->c) = %v", err)
	}
	if err := g.Bind("b", DefaultPort, "d", DefaultPort, nil); err != nil {
		t.Fatalf("Bind(b->d) = %v", err)
	}
	if err := g.Bind("c", DefaultPort, "d", DefaultPort, nil); err != nil {
		t.Errorf("Bind(c->d) diamond join = %v, want no error", err)
	}
}

func TestCsvToList(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b ,c ", []string{"a", "b", "c"}},
		{"", nil},
		{"   ", nil},
		{"solo", []string{"solo"}},
	}
	for _, c := range cases {
		out, err := CsvToList(Text(c.in))
		if err != nil {
			t.Fatalf("CsvToList(%q) error: %v", c.in, err)
		}
		got := out.AsList()
		if len(got) != len(c.want) {
			t.Fatalf("CsvToList(%q) = %v, want %v", c.in, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("CsvToList(%q)[%d] = %q, want %q", c.in, i, got[i], c.want[i])
			}
		}
	}
}

func TestCsvToListRejectsNonText(t *testing.T) {
	if _, err := CsvToList(Number(5)); err == nil {
		t.Errorf("CsvToList(Number) succeeded, want a BindingError-shaped error")
	}
}

// TestBindingPropagatesWithTransformation is §8 concrete scenario 5:
// tags_raw -> tags via CsvToList.
func TestBindingPropagatesWithTransformation(t *testing.T) {
	raw := NewTextInput("tags_raw")
	tags := NewTextInput("tags")

	g := NewBindingGraph()
	if err := g.Bind("tags_raw", DefaultPort, "tags", DefaultPort, CsvToList); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	resolve := func(id NodeId) Widget {
		switch id {
		case "tags_raw":
			return raw
		case "tags":
			return tags
		}
		return nil
	}
	vs := NewValidationState()

	raw.SetText("a,b,c")
	g.Propagate("tags_raw", DefaultPort, raw.value, resolve, vs)

	got := tags.value.AsList()
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("tags = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tags[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if fs, ok := vs.Get("tags"); ok {
		t.Errorf("unexpected validation issue on tags: %v", fs)
	}
}

func TestBindingTransformFailureSetsHiddenIssueAndKeepsOldValue(t *testing.T) {
	raw := NewTextInput("n_raw")
	target := NewTextInput("n")
	target.SetText("unchanged")

	g := NewBindingGraph()
	failing := func(Value) (Value, error) { return None, errAlwaysFails }
	if err := g.Bind("n_raw", DefaultPort, "n", DefaultPort, failing); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	resolve := func(id NodeId) Widget {
		if id == "n_raw" {
			return raw
		}
		if id == "n" {
			return target
		}
		return nil
	}
	vs := NewValidationState()
	g.Propagate("n_raw", DefaultPort, Text("anything"), resolve, vs)

	if target.Text() != "unchanged" {
		t.Errorf("target value changed to %q after transform failure, want unchanged", target.Text())
	}
	fs, ok := vs.Get("n")
	if !ok {
		t.Fatalf("expected a Hidden issue recorded on n after transform failure")
	}
	if fs.Visibility != Hidden {
		t.Errorf("issue visibility = %v, want Hidden", fs.Visibility)
	}
}

type bindingTestError struct{}

func (bindingTestError) Error() string { return "transform failed" }

var errAlwaysFails = bindingTestError{}
