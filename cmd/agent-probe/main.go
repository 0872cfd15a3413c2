package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/prsentry/prsentry/internal/infra/ai/gemini"
)

const samplePR = "https://github.com/prebid/Prebid.js/pull/11000"

// Probes the Gemini setup end to end: key present, client constructs, a
// structured review call works, and the plain-exchange fallback works.
func main() {
	_ = godotenv.Load()

	fmt.Println("Step 1: checking API key...")
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_GENAI_API_KEY")
	}
	if apiKey == "" {
		fmt.Println("❌ No API key found.")
		fmt.Println("   1. Get a key at https://aistudio.google.com/apikey")
		fmt.Println("   2. export GEMINI_API_KEY=<your key>  (or put it in .env)")
		fmt.Println("   3. Re-run this probe")
		os.Exit(1)
	}
	if strings.HasPrefix(apiKey, "your_") {
		fmt.Println("❌ API key is still the placeholder from .env.example.")
		fmt.Println("   Replace it with a real key from https://aistudio.google.com/apikey")
		os.Exit(1)
	}
	if len(apiKey) > 8 {
		fmt.Printf("✅ Key found: %s...%s\n", apiKey[:4], apiKey[len(apiKey)-4:])
	} else {
		fmt.Println("✅ Key found (short key, not masking)")
	}

	ctx := context.Background()

	fmt.Println("Step 2: creating Gemini client...")
	client, err := gemini.NewClient(ctx, apiKey, os.Getenv("GEMINI_MODEL"))
	if err != nil {
		fmt.Printf("❌ Client creation failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Client ready (model: %s)\n", client.Model)

	fmt.Println("Step 3: running a structured PR review...")
	review, err := client.Analyze(ctx, samplePR)
	if err != nil {
		fmt.Printf("❌ Structured review failed: %v\n", err)
		fmt.Println("Step 4: falling back to a plain exchange...")
		reply, err := client.Generate(ctx, "Reply with the single word: pong")
		if err != nil {
			fmt.Printf("❌ Plain exchange failed too: %v\n", err)
			fmt.Println("   Check quota and key permissions at https://aistudio.google.com")
			os.Exit(1)
		}
		fmt.Printf("✅ Plain exchange works: %s\n", strings.TrimSpace(reply))
		fmt.Println("   The key works; the structured review path needs investigation.")
		return
	}

	fmt.Println("✅ Structured review returned:")
	fmt.Println(review)
}
