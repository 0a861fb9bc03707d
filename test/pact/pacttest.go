//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "livestock-marketplace-api"
	ConsumerName = "buyer-portal"

	StateListingAvailable = "listing 1 is available"
	StateListingMissing   = "no listing with id 404"
	StateOrderLost        = "order 2 lost listing 1 to another buyer"
)

const (
	// Provider states start from empty stores, so the first listing and the
	// second order get these identifiers.
	ExistingListingID int64 = 1
	MissingListingID  int64 = 404
	LostOrderID       int64 = 2

	BuyerToken = "pact-buyer-session"
)

const (
	exampleSpecies = "Cattle"
	exampleBreed   = "Angus"
	examplePrice   = "100.00"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the buyer portal consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleListing is the listing seeded for StateListingAvailable.
func ExampleListing() map[string]any {
	return map[string]any{
		"id":        ExistingListingID,
		"species":   exampleSpecies,
		"breed":     exampleBreed,
		"price":     examplePrice,
		"isForSale": true,
		"status":    "available",
	}
}

// ExampleListingSeed returns the species, breed and price used when seeding.
func ExampleListingSeed() (species, breed, price string) {
	return exampleSpecies, exampleBreed, examplePrice
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
