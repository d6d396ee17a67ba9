package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/prodscout/backend/internal/domain"
)

// RecommendService turns a ranked scrape result into free-text shopping
// advice via the text-generation collaborator. The generator is treated as an
// opaque black box; when it is missing or errors, the service degrades to a
// plain formatted listing instead of failing the request.
type RecommendService struct {
	scraper   *ScrapeService
	generator domain.TextGenerator
}

// NewRecommendService creates a recommendation service. A nil generator is
// allowed; recommendations then always use the plain listing fallback.
func NewRecommendService(scraper *ScrapeService, generator domain.TextGenerator) *RecommendService {
	return &RecommendService{scraper: scraper, generator: generator}
}

// Recommend scrapes with inline polling and asks the generator to summarize
// the ranked products. Returns the scrape result together with the generated
// (or fallback) text.
func (s *RecommendService) Recommend(ctx context.Context, req *domain.ScrapeRequest) (*domain.ScrapeResult, string, error) {
	result, err := s.scraper.ScrapeAndWait(ctx, req)
	if err != nil {
		return nil, "", err
	}

	if len(result.Products) == 0 {
		return result, "No products matched the given criteria.", nil
	}

	if s.generator == nil {
		return result, formatListing(result.Products), nil
	}

	text, err := s.generator.Generate(ctx, buildPrompt(req.Keywords, result.Products))
	if err != nil {
		log.Printf("[RECOMMEND] Text generation failed, using plain listing: %v", err)
		return result, formatListing(result.Products), nil
	}

	return result, text, nil
}

func buildPrompt(keywords []string, products []domain.Product) string {
	var b strings.Builder
	b.WriteString("You are a helpful shopping assistant. A user searched for: ")
	b.WriteString(strings.Join(keywords, ", "))
	b.WriteString("\n\nHere are the top matching products, already filtered by rating and price:\n\n")
	b.WriteString(formatListing(products))
	b.WriteString("\nRecommend which product the user should buy and why, in two or three short paragraphs. ")
	b.WriteString("Mention price and rating trade-offs. Do not invent products that are not listed.")
	return b.String()
}

func formatListing(products []domain.Product) string {
	var b strings.Builder
	for i, p := range products {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p.Title)
		fmt.Fprintf(&b, "   Price: %s | Rating: %.1f (%d reviews) | %s\n", p.Price, p.Rating, p.ReviewCount, p.Availability)
		fmt.Fprintf(&b, "   %s\n", p.Link)
	}
	return b.String()
}
