package vendors

import (
	"testing"

	"github.com/purecarat/diamond-backend/internal/repos/testutil"
)

func TestRegistryLookup(t *testing.T) {
	log := testutil.Logger(t)
	reg := NewRegistry(
		NewVDBAdapter(VDBOptions{BaseURL: "http://example.test"}, log),
		NewAarushAdapter(AarushOptions{BaseURL: "http://example.test"}, log),
	)

	for _, name := range []string{"VDB", "vdb", " Vdb "} {
		if a, ok := reg.Get(name); !ok || a.Source() != SourceVDB {
			t.Fatalf("Get(%q) failed", name)
		}
	}
	if _, ok := reg.Get("rapnet"); ok {
		t.Fatal("unknown vendor should not resolve")
	}

	sources := reg.Sources()
	if len(sources) != 2 || sources[0] != SourceAarush || sources[1] != SourceVDB {
		t.Fatalf("Sources() = %v", sources)
	}
}
