package refindex_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/calvinalkan/idfpatch/internal/refindex"
	"github.com/calvinalkan/idfpatch/pkg/idf"
)

const doc = `
Branch,Main Branch,,Pipe:Adiabatic,Supply Pipe,Loop Inlet,Pipe Outlet,Pipe:Adiabatic,Second Pipe,Pipe Outlet,Loop Outlet;
Pipe:Adiabatic,Supply Pipe,Loop Inlet,Pipe Outlet;
Pipe:Adiabatic,Second Pipe,pipe outlet,Loop Outlet;
NodeList,Watched Nodes,Loop Outlet,Dangling Node;
`

func newStore(t *testing.T) *idf.Store {
	t.Helper()

	s := idf.NewStore()
	if _, err := s.Load(doc); err != nil {
		t.Fatal(err)
	}

	return s
}

func openBuilt(t *testing.T, path string) *refindex.Index {
	t.Helper()

	ctx := context.Background()

	ix, err := refindex.Open(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	t.Cleanup(func() { _ = ix.Close() })

	if _, err := ix.Build(ctx, newStore(t)); err != nil {
		t.Fatalf("build: %v", err)
	}

	return ix
}

func Test_Refs_Finds_Every_Field_When_Value_Differs_In_Case(t *testing.T) {
	t.Parallel()

	ix := openBuilt(t, "")

	refs, err := ix.Refs(context.Background(), "PIPE OUTLET")
	if err != nil {
		t.Fatal(err)
	}

	want := []refindex.Ref{
		{Pos: 0, Type: "Branch", Key: "Main Branch", Field: 5, FieldName: "Component 1 Outlet Node Name", Value: "Pipe Outlet"},
		{Pos: 0, Type: "Branch", Key: "Main Branch", Field: 8, FieldName: "Component 2 Inlet Node Name", Value: "Pipe Outlet"},
		{Pos: 1, Type: "Pipe:Adiabatic", Key: "Supply Pipe", Field: 2, FieldName: "Outlet Node Name", Value: "Pipe Outlet"},
		{Pos: 2, Type: "Pipe:Adiabatic", Key: "Second Pipe", Field: 1, FieldName: "Inlet Node Name", Value: "pipe outlet"},
	}

	if diff := cmp.Diff(want, refs); diff != "" {
		t.Fatalf("refs mismatch (-want +got):\n%s", diff)
	}

	if got, want := refs[0].String(), `Branch "Main Branch" field 5 (Component 1 Outlet Node Name)`; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func Test_OrphanNodes_Reports_Single_Ended_Nodes_When_Built(t *testing.T) {
	t.Parallel()

	ix := openBuilt(t, "")

	orphans, err := ix.OrphanNodes(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	var got []string
	for _, o := range orphans {
		got = append(got, o.Value)
	}

	// Loop Inlet appears twice (branch + pipe); only the NodeList entry is
	// single-ended.
	if diff := cmp.Diff([]string{"Dangling Node"}, got); diff != "" {
		t.Fatalf("orphans mismatch (-want +got):\n%s", diff)
	}
}

func Test_Build_Replaces_Content_When_Called_Again(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "refs.sqlite")
	ix := openBuilt(t, path)

	s := newStore(t)
	r, _ := s.Lookup("NodeList", "Watched Nodes")

	if err := s.Remove(r); err != nil {
		t.Fatal(err)
	}

	n, err := ix.Build(ctx, s)
	if err != nil {
		t.Fatal(err)
	}

	records, fields, err := ix.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if records != 3 || fields != n || fields != 16 {
		t.Fatalf("count = %d records, %d fields (build wrote %d), want 3 and 16", records, fields, n)
	}

	if err := ix.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := refindex.Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	refs, err := reopened.Refs(ctx, "Dangling Node")
	if err != nil {
		t.Fatal(err)
	}

	if len(refs) != 0 {
		t.Fatalf("refs = %v, want none after rebuild", refs)
	}

	refs, err = reopened.Refs(ctx, "Loop Inlet")
	if err != nil {
		t.Fatal(err)
	}

	if len(refs) != 2 {
		t.Fatalf("refs = %v, want 2 persisted refs", refs)
	}
}
