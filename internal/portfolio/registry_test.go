package portfolio

import "testing"

func TestDefaults(t *testing.T) {
	all := All()
	if len(all) != 3 {
		t.Fatalf("All() returned %d projects, want 3", len(all))
	}

	wantKeys := []string{"data-cleaning", "sales-analysis", "research"}
	for i, key := range wantKeys {
		if all[i].Key != key {
			t.Errorf("All()[%d].Key = %q, want %q", i, all[i].Key, key)
		}
	}

	demos := 0
	for _, p := range all {
		if p.HasDemo() {
			demos++
			if p.DemoPath != DataCleaningDemo {
				t.Errorf("%s DemoPath = %q", p.Key, p.DemoPath)
			}
		}
		if p.Title == "" || p.DetailPath == "" || p.Image == "" {
			t.Errorf("project %s is incomplete: %+v", p.Key, p)
		}
	}
	if demos != 1 {
		t.Errorf("%d projects have demos, want 1", demos)
	}
}

func TestRegister(t *testing.T) {
	t.Cleanup(func() {
		Clear()
		RegisterDefaults()
	})
	Clear()

	Register(Project{Key: "b", Title: "B"})
	Register(Project{Key: "a", Title: "A"})

	if Count() != 2 {
		t.Fatalf("Count() = %d, want 2", Count())
	}
	if all := All(); all[0].Key != "b" || all[1].Key != "a" {
		t.Errorf("All() = %v, want registration order", all)
	}
	if p, ok := Get("a"); !ok || p.Title != "A" {
		t.Errorf("Get(a) = %+v, %v", p, ok)
	}
	if _, ok := Get("missing"); ok {
		t.Error("Get(missing) should return false")
	}
}

func TestRegister_Panics(t *testing.T) {
	t.Cleanup(func() {
		Clear()
		RegisterDefaults()
	})
	Clear()

	tests := []struct {
		name string
		p    Project
	}{
		{name: "empty key", p: Project{}},
		{name: "duplicate", p: Project{Key: "dup"}},
	}

	Register(Project{Key: "dup"})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("Register() should panic")
				}
			}()
			Register(tt.p)
		})
	}
}
