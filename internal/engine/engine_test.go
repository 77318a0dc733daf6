package engine

import (
	"testing"

	"groovylsp/internal/compiler"
	"groovylsp/internal/frontend"
)

func newTestEngine() *Engine {
	facade := compiler.NewFacade(compiler.DefaultConfig(), frontend.New, nil)
	return New(facade, Options{}, nil)
}

func TestCompileSuccessPopulatesCacheAndGraph(t *testing.T) {
	e := newTestEngine()
	text := "import com.acme.Utils\nUtils.doSomething()\n"
	res := e.Compile("file:///Main.groovy", text, compiler.PhaseSemantic)
	if res.Status != StatusSuccess {
		t.Fatalf("status %s, issues %v", res.Status, res.Issues)
	}
	if res.Tree == nil {
		t.Fatalf("missing tree")
	}
	if e.Cache().Len() != 1 {
		t.Fatalf("cache not populated")
	}
	affected := e.AffectedBy("file:///lib/Utils.groovy")
	if len(affected) != 1 || affected[0] != "file:///Main.groovy" {
		t.Fatalf("graph not updated: %v", affected)
	}
}

func TestCompileCacheHitReturnsSameTree(t *testing.T) {
	e := newTestEngine()
	text := "def x = 1\n"
	first := e.Compile("file:///a.groovy", text, compiler.PhaseSemantic)
	second := e.Compile("file:///a.groovy", text, compiler.PhaseSemantic)
	if first.Tree != second.Tree {
		t.Fatalf("expected cached tree on identical input")
	}
}

func TestCompileChangedTextMissesCache(t *testing.T) {
	e := newTestEngine()
	first := e.Compile("file:///a.groovy", "def x = 1\n", compiler.PhaseSemantic)
	second := e.Compile("file:///a.groovy", "def x = 2\n", compiler.PhaseSemantic)
	if first.Tree == second.Tree {
		t.Fatalf("stale tree returned after content change")
	}
}

func TestCompilePartialNotCached(t *testing.T) {
	e := newTestEngine()
	res := e.Compile("file:///broken.groovy", "def hello( { return 'Hello' }", compiler.PhaseSemantic)
	if res.Status != StatusPartial {
		t.Fatalf("status %s", res.Status)
	}
	if res.Tree == nil {
		t.Fatalf("partial result should carry the tree")
	}
	if len(res.Issues) == 0 {
		t.Fatalf("partial result should carry issues")
	}
	if e.Cache().Len() != 0 {
		t.Fatalf("error-bearing tree must not be cached")
	}
}

func TestCompileIssuesAreRefined(t *testing.T) {
	e := newTestEngine()
	res := e.Compile("file:///broken.groovy", "def hello( { return 'Hello' }", compiler.PhaseSemantic)
	first := res.Issues[0]
	if first.Code == "" {
		t.Fatalf("issue missing code")
	}
	if first.Code[:8] != "groovy-1" {
		t.Fatalf("syntax issue code %q", first.Code)
	}
	if first.Range.Start.Character != 11 || first.Range.End.Character != 12 {
		t.Fatalf("range not refined to the stray brace: %+v", first.Range)
	}
}

func TestCompileLowerPhaseServedFromHigherCache(t *testing.T) {
	e := newTestEngine()
	text := "def x = 1\n"
	first := e.Compile("file:///a.groovy", text, compiler.PhaseSemantic)
	second := e.Compile("file:///a.groovy", text, compiler.PhaseConvert)
	if first.Tree != second.Tree {
		t.Fatalf("semantic-phase tree should satisfy a conversion-phase request")
	}
}

func TestRemoveForgetsSource(t *testing.T) {
	e := newTestEngine()
	e.Compile("file:///B.groovy", "import a.A\nclass B {}\n", compiler.PhaseSemantic)
	if got := e.AffectedBy("file:///A.groovy"); len(got) != 1 {
		t.Fatalf("precondition failed: %v", got)
	}
	e.Remove("file:///B.groovy")
	if got := e.AffectedBy("file:///A.groovy"); len(got) != 0 {
		t.Fatalf("removed source still in graph: %v", got)
	}
	if e.Cache().Len() != 0 {
		t.Fatalf("removed source still cached")
	}
}
