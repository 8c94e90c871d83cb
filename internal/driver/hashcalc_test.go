package driver

import "testing"

func TestCacheKeyDependsOnOptions(t *testing.T) {
	var content Digest
	content[0] = 'A'
	base := cacheKey(content, DiagnoseOptions{})
	if base != cacheKey(content, DiagnoseOptions{MaxDiagnostics: 7, EnableTimings: true}) {
		t.Fatal("key changed with options that do not affect the outcome")
	}
	seen := map[Digest]string{base: "plain"}
	for name, opts := range map[string]DiagnoseOptions{
		"docs":   {RequireDocs: true},
		"werror": {WarningsAsErrors: true},
		"both":   {RequireDocs: true, WarningsAsErrors: true},
	} {
		k := cacheKey(content, opts)
		if prev, dup := seen[k]; dup {
			t.Fatalf("%s collides with %s", name, prev)
		}
		seen[k] = name
	}
	var other Digest
	other[0] = 'B'
	if cacheKey(other, DiagnoseOptions{}) == base {
		t.Fatal("key ignores content")
	}
}
