package filter

import "testing"

func TestGlobShouldInclude(t *testing.T) {
	g := NewGlob([]string{"*.tmp", ".git/", "build/*", "**/testdata/*.golden", "[bad"}, nil)

	tests := []struct {
		path     string
		isFolder bool
		include  bool
	}{
		{"notes.tmp", false, false},
		{"dir/notes.tmp", false, false},
		{"notes.txt", false, true},
		{".git", true, false},
		{".git/config", false, false},
		{"sub/.git/HEAD", false, false},
		{"build/out.bin", false, false},
		{"build", true, true},
		{"pkg/testdata/a.golden", false, false},
		{"pkg/a.golden", false, true},
		{"", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := g.ShouldInclude(tt.path, tt.isFolder); got != tt.include {
				t.Errorf("ShouldInclude(%q, %v) = %v, want %v", tt.path, tt.isFolder, got, tt.include)
			}
		})
	}
}

func TestGlobSkipAndRecurse(t *testing.T) {
	g := &Glob{Skip: []string{"*.iso"}, NoRecurse: []string{"vendor/"}}

	if !ShouldSkip(g, "images/disk.iso", false) {
		t.Error("*.iso should be skipped")
	}
	if ShouldSkip(g, "images/disk.img", false) {
		t.Error("*.img should not be skipped")
	}
	if g.ShouldRecurse("vendor") {
		t.Error("vendor should not be recursed")
	}
	if !g.ShouldRecurse("src") {
		t.Error("src should be recursed")
	}
}

func TestAllFilter(t *testing.T) {
	var f Filter = All{}
	if !f.ShouldInclude("anything", false) || !f.ShouldRecurse("dir") {
		t.Error("All should include and recurse everything")
	}
	if ShouldSkip(f, "anything", false) {
		t.Error("All does not skip")
	}
}
