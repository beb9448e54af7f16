package module_test

import (
	"fmt"
	"testing"

	"github.com/dstanley-scripts/datascript/internal/module"
)

func fakeLoader(files map[string]string) *module.Loader {
	l := module.New("/proj")
	l.ReadFile = func(path string) (string, error) {
		src, ok := files[path]
		if !ok {
			return "", fmt.Errorf("no such file: %s", path)
		}
		return src, nil
	}
	return l
}

func TestResolveImportPathRelativeAndExtension(t *testing.T) {
	l := fakeLoader(nil)
	got, err := l.ResolveImportPath("./lib")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/proj/lib.ds" {
		t.Errorf("expected /proj/lib.ds, got %q", got)
	}
}

func TestResolveImportPathNestedContext(t *testing.T) {
	l := fakeLoader(nil)
	if err := l.Enter("/proj/sub/a.ds"); err != nil {
		t.Fatal(err)
	}
	defer l.Leave("/proj/sub/a.ds")
	got, _ := l.ResolveImportPath("./b.ds")
	if got != "/proj/sub/b.ds" {
		t.Errorf("expected /proj/sub/b.ds, got %q", got)
	}
}

func TestCircularImportIsFatal(t *testing.T) {
	l := fakeLoader(nil)
	if err := l.Enter("/proj/a.ds"); err != nil {
		t.Fatal(err)
	}
	if err := l.Enter("/proj/a.ds"); err == nil {
		t.Fatal("expected re-entering the same path to be fatal")
	}
}

func TestGetProgramIsMemoized(t *testing.T) {
	calls := 0
	l := module.New("/proj")
	l.ReadFile = func(path string) (string, error) {
		calls++
		return `declare x = 1;`, nil
	}
	if _, err := l.GetProgram("/proj/a.ds"); err != nil {
		t.Fatal(err)
	}
	if _, err := l.GetProgram("/proj/a.ds"); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("expected GetProgram to read the file once, got %d reads", calls)
	}
}

func TestGetProgramParseErrorIsNotCached(t *testing.T) {
	reads := 0
	l := module.New("/proj")
	l.ReadFile = func(path string) (string, error) {
		reads++
		return `declare const x;`, nil
	}
	for i := 0; i < 2; i++ {
		if _, err := l.GetProgram("/proj/bad.ds"); err == nil {
			t.Fatal("expected parse error")
		}
	}
	if reads != 2 {
		t.Errorf("expected a failed parse not to be cached (2 reads), got %d", reads)
	}
}
