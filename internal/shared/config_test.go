package shared_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"review_dashboard/internal/shared"
)

const sampleYAML = `
hostaway:
  category_scale: 2
  rps: 3
places:
  category_scale: 1
  places:
    - id: ChIJ-shoreditch-heights
      name: 29 Shoreditch Heights
warm:
  listings: [2B-N1-A, 1B-E2-C]
`

func TestLoad_FileThenEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("HOSTAWAY_RPS", "7")
	t.Setenv("SOURCE_TIMEOUT_MS", "1500")
	t.Setenv("WARM_LISTINGS", "")
	t.Setenv("PLACES_IDS", "")
	t.Setenv("HOSTAWAY_CATEGORY_SCALE", "")
	t.Setenv("PLACES_CATEGORY_SCALE", "5")

	c := shared.Load()
	if c.HostawayRPS != 7 {
		t.Fatalf("env should override file rps, got %d", c.HostawayRPS)
	}
	if c.HostawayScale != 2 || c.PlacesScale != 5 {
		t.Fatalf("unexpected scales: %v %v", c.HostawayScale, c.PlacesScale)
	}
	if c.SourceTimeout != 1500*time.Millisecond {
		t.Fatalf("unexpected timeout: %v", c.SourceTimeout)
	}
	want := []shared.Place{{ID: "ChIJ-shoreditch-heights", Name: "29 Shoreditch Heights"}}
	if diff := cmp.Diff(want, c.Places); diff != "" {
		t.Fatalf("places mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"2B-N1-A", "1B-E2-C"}, c.WarmListings); diff != "" {
		t.Fatalf("warm listings mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePlaces(t *testing.T) {
	got := shared.ParsePlaces(" abc=Main House , def,, =nameless")
	want := []shared.Place{{ID: "abc", Name: "Main House"}, {ID: "def"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}
