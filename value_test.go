package forme

import "testing"

func TestValueAccessors(t *testing.T) {
	t.Run("text round-trips", func(t *testing.T) {
		v := Text("hello")
		if v.Kind() != KindText {
			t.Fatalf("Kind() = %v, want KindText", v.Kind())
		}
		if got := v.AsText(); got != "hello" {
			t.Errorf("AsText() = %q, want %q", got, "hello")
		}
	})

	t.Run("wrong-kind accessors return zero values", func(t *testing.T) {
		v := Text("hello")
		if v.AsBool() != false {
			t.Errorf("AsBool() on Text = %v, want false", v.AsBool())
		}
		if v.AsNumber() != 0 {
			t.Errorf("AsNumber() on Text = %v, want 0", v.AsNumber())
		}
		if v.AsList() != nil {
			t.Errorf("AsList() on Text = %v, want nil", v.AsList())
		}
	})

	t.Run("list copies on construction and read", func(t *testing.T) {
		items := []string{"a", "b"}
		v := List(items)
		items[0] = "mutated"
		if got := v.AsList(); got[0] != "a" {
			t.Errorf("List did not copy input: got %v", got)
		}
		out := v.AsList()
		out[0] = "mutated"
		if got := v.AsList(); got[0] != "a" {
			t.Errorf("AsList did not copy output: got %v", got)
		}
	})
}

func TestValueEqual(t *testing.T) {
	cases := []struct {
		name string
		a, b Value
		want bool
	}{
		{"equal text", Text("x"), Text("x"), true},
		{"different text", Text("x"), Text("y"), false},
		{"different kind", Text("1"), Number(1), false},
		{"equal list", List([]string{"a", "b"}), List([]string{"a", "b"}), true},
		{"different list length", List([]string{"a"}), List([]string{"a", "b"}), false},
		{"none equals none", None, None, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.a.Equal(c.b); got != c.want {
				t.Errorf("Equal() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestNodeIdOrdering(t *testing.T) {
	if !NodeId("a").Less(NodeId("b")) {
		t.Errorf(`NodeId("a").Less("b") = false, want true`)
	}
	if NodeId("b").Less(NodeId("a")) {
		t.Errorf(`NodeId("b").Less("a") = true, want false`)
	}
}
