package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/prsentry/prsentry/internal/application"
	appfixtures "github.com/prsentry/prsentry/internal/application/fixtures"
	domain "github.com/prsentry/prsentry/internal/domain/fixtures"
	"github.com/prsentry/prsentry/internal/infra/github"
)

// Checks that the pull requests used as live-test fixtures still exist on
// GitHub. Always exits 0; a broken fixture is reported, not fatal.
func main() {
	_ = godotenv.Load()

	fmt.Println("🔍 Verifying test PR URLs...")
	fmt.Println(strings.Repeat("=", 50))

	gh := github.NewClient(os.Getenv("GITHUB_TOKEN"), 10*time.Second)

	svc := &appfixtures.Service{
		Checker: gh,
		Clock:   application.SystemClock{},
		OnResult: func(r domain.CheckResult) {
			if r.Status == domain.CheckOK {
				fmt.Printf("✅ %s: OK\n", r.Name)
				fmt.Printf("   Title: %s\n", r.Title)
				fmt.Printf("   State: %s\n", r.State)
			} else {
				fmt.Printf("❌ %s: FAILED (%s)\n", r.Name, r.Error)
				fmt.Printf("   URL: %s\n", r.URL)
			}
		},
	}

	results := svc.VerifyAll(context.Background(), "local", domain.DefaultSet())

	failed := 0
	for _, r := range results {
		if r.Status != domain.CheckOK {
			failed++
		}
	}

	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("✅ Verification complete!")

	if failed > 0 {
		fmt.Printf("\n%d of %d fixtures need replacement. To find new PRs:\n", failed, len(results))
		fmt.Println("  gh pr list --repo prebid/Prebid.js --state merged --limit 5")
		fmt.Println("  gh pr list --repo prebid/prebid-server --state merged --limit 5")
		fmt.Println("  gh pr list --repo prebid/prebid.github.io --state merged --limit 5")
	}
}
