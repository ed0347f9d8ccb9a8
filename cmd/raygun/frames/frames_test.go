package frames

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	goerrors "github.com/go-errors/errors"
)

var methodNameRe = regexp.MustCompile(`^[^/]+/\d+$`)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		raw        RawFrame
		wantClass  string
		wantMethod string
		wantFile   string
		wantLine   int
	}{
		{
			name: "module frame with arity",
			raw: RawFrame{
				Module:   "orders.Handler",
				Function: "show",
				Arity:    2,
				Location: &Location{File: "lib/orders/handler.ex", Line: 42},
			},
			wantClass:  "orders.Handler",
			wantMethod: "show/2",
			wantFile:   "lib/orders/handler.ex",
			wantLine:   42,
		},
		{
			name: "module frame with argument list",
			raw: RawFrame{
				Module:   "orders.Repo",
				Function: "get",
				Args:     []any{"orders", 42, nil},
				Location: &Location{File: "repo.go", Line: 7},
			},
			wantClass:  "orders.Repo",
			wantMethod: "get/3",
			wantFile:   "repo.go",
			wantLine:   7,
		},
		{
			name: "self frame",
			raw: RawFrame{
				Function: "capture",
				Arity:    1,
				Location: &Location{File: "capture.go", Line: 10},
			},
			wantClass:  SelfModule,
			wantMethod: "capture/1",
			wantFile:   "capture.go",
			wantLine:   10,
		},
		{
			name:       "missing location",
			raw:        RawFrame{Module: "m", Function: "f"},
			wantClass:  "m",
			wantMethod: "f/0",
		},
		{
			name:       "negative line",
			raw:        RawFrame{Module: "m", Function: "f", Location: &Location{File: "x.go", Line: -3}},
			wantClass:  "m",
			wantMethod: "f/0",
			wantFile:   "x.go",
		},
		{
			name:       "empty argument list wins over arity",
			raw:        RawFrame{Module: "m", Function: "f", Arity: 4, Args: []any{}},
			wantClass:  "m",
			wantMethod: "f/0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.raw)
			if got.ClassName != tt.wantClass {
				t.Errorf("ClassName = %q, want %q", got.ClassName, tt.wantClass)
			}
			if got.MethodName != tt.wantMethod {
				t.Errorf("MethodName = %q, want %q", got.MethodName, tt.wantMethod)
			}
			if !methodNameRe.MatchString(got.MethodName) {
				t.Errorf("MethodName %q does not look like name/arity", got.MethodName)
			}
			if got.FileName != tt.wantFile {
				t.Errorf("FileName = %q, want %q", got.FileName, tt.wantFile)
			}
			if got.LineNumber != tt.wantLine {
				t.Errorf("LineNumber = %d, want %d", got.LineNumber, tt.wantLine)
			}
		})
	}
}

func TestNormalizePreservesOrder(t *testing.T) {
	trace := []RawFrame{
		{Module: "a", Function: "outer", Arity: 0},
		{Module: "b", Function: "middle", Arity: 1},
		{Function: "inner", Arity: 2},
	}

	got := Normalize(trace)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	want := []string{"outer/0", "middle/1", "inner/2"}
	for i, w := range want {
		if got[i].MethodName != w {
			t.Errorf("frame %d = %q, want %q", i, got[i].MethodName, w)
		}
	}
}

func TestNormalizeEmpty(t *testing.T) {
	got := Normalize(nil)
	if got == nil {
		t.Fatal("Normalize(nil) returned nil, want empty slice")
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestFromError(t *testing.T) {
	err := goerrors.New("boom")
	wrapped := fmt.Errorf("handling order: %w", err)

	trace := FromError(wrapped)
	if len(trace) == 0 {
		t.Fatal("FromError returned no frames for go-errors error")
	}
	if !strings.HasSuffix(trace[0].Location.File, "frames_test.go") {
		t.Errorf("first frame file = %q, want frames_test.go", trace[0].Location.File)
	}
	if trace[0].Function != "TestFromError" {
		t.Errorf("first frame function = %q, want TestFromError", trace[0].Function)
	}
}

func TestFromErrorWithoutStack(t *testing.T) {
	if trace := FromError(fmt.Errorf("plain")); trace != nil {
		t.Errorf("FromError(plain) = %v, want nil", trace)
	}
}

func TestCallers(t *testing.T) {
	trace := Callers(0)
	if len(trace) == 0 {
		t.Fatal("Callers returned no frames")
	}
	if trace[0].Function != "TestCallers" {
		t.Errorf("first frame function = %q, want TestCallers", trace[0].Function)
	}
	if trace[0].Location == nil || trace[0].Location.Line == 0 {
		t.Errorf("first frame has no location: %+v", trace[0].Location)
	}
}

func TestSplitFunction(t *testing.T) {
	tests := []struct {
		in, pkg, name string
	}{
		{"github.com/acme/shop/orders.(*Repo).Get", "github.com/acme/shop/orders", "(*Repo).Get"},
		{"main.main", "main", "main"},
		{"github.com/acme/shop.handler.func1", "github.com/acme/shop", "handler.func1"},
		{"noPackage", "", "noPackage"},
	}
	for _, tt := range tests {
		pkg, name := splitFunction(tt.in)
		if pkg != tt.pkg || name != tt.name {
			t.Errorf("splitFunction(%q) = %q, %q; want %q, %q", tt.in, pkg, name, tt.pkg, tt.name)
		}
	}
}
