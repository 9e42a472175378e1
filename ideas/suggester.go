// Package ideas produces product ideas, trending products and affiliate kits for a topic.
package ideas

import (
	"context"
	"hash/fnv"
	"strings"

	"creatorhub/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	maxIdeas    = 3
	maxTrending = 2
	maxKits     = 2
)

// IdeaRequest selects what to research: a topic in a market region for a product type.
type IdeaRequest struct {
	Topic       string `json:"topic"`
	Region      string `json:"region"`
	ProductType string `json:"productType"`
}

// KitRequest names the product an affiliate kit promotes.
type KitRequest struct {
	ProductName string `json:"productName"`
	Topic       string `json:"topic"`
}

// ContentSuggester proposes new entries. existing holds the titles already stored for the
// same request; suggestions never repeat them.
type ContentSuggester interface {
	SuggestProductIdeas(ctx context.Context, req IdeaRequest, existing []string) ([]models.ProductIdea, error)
	SuggestTrendingProducts(ctx context.Context, req IdeaRequest, existing []string) ([]models.TrendingProduct, error)
	SuggestAffiliateKits(ctx context.Context, req KitRequest, existing []string) ([]models.AffiliateKit, error)
}

// TemplateSuggester expands fixed per-topic templates. Every pick is derived from a hash of
// the inputs, so the same request always yields the same suggestions.
type TemplateSuggester struct {
	printer *message.Printer
	lower   cases.Caser
}

func NewTemplateSuggester() *TemplateSuggester {
	return &TemplateSuggester{
		printer: message.NewPrinter(language.English),
		lower:   cases.Lower(language.Und),
	}
}

func expand(tmpl, topic, productType, product string) string {
	return strings.NewReplacer("{topic}", topic, "{type}", productType, "{product}", product).Replace(tmpl)
}

// pick maps seed onto [0, n).
func pick(seed string, n int) int {
	if n <= 0 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))
	return int(h.Sum32() % uint32(n))
}

func choose(seed string, options []string) string {
	return options[pick(seed, len(options))]
}

// rotate returns n items of pool starting at a seed-derived offset.
func rotate(seed string, pool []string, n int) []string {
	if n > len(pool) {
		n = len(pool)
	}
	start := pick(seed, len(pool))
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, pool[(start+i)%len(pool)])
	}
	return out
}

func titleSet(existing []string) map[string]bool {
	set := make(map[string]bool, len(existing))
	for _, t := range existing {
		set[strings.ToLower(t)] = true
	}
	return set
}

func fresh(templates []string, taken map[string]bool, topic, productType, product string) []string {
	var out []string
	for _, tmpl := range templates {
		title := expand(tmpl, topic, productType, product)
		if !taken[strings.ToLower(title)] {
			out = append(out, title)
		}
	}
	return out
}

func regionSpan(table map[string]span, region string) span {
	if s, ok := table[region]; ok {
		return s
	}
	return table[defaultRegion]
}

func (s *TemplateSuggester) revenueRange(seed, region string) string {
	r := regionSpan(revenueRanges, region)
	low := r.min + pick(seed+"|min", 1000)
	high := r.max + pick(seed+"|max", 5000)
	return s.printer.Sprintf("$%d-%d/month", low, high)
}

func (s *TemplateSuggester) price(seed, region string) string {
	r := regionSpan(priceRanges, region)
	return s.printer.Sprintf("$%d", r.min+pick(seed+"|price", r.max-r.min))
}

func (s *TemplateSuggester) keywords(seed, topic string) []string {
	return append([]string{s.lower.String(topic)}, rotate(seed+"|kw", keywordPool, 3)...)
}

func (s *TemplateSuggester) SuggestProductIdeas(ctx context.Context, req IdeaRequest, existing []string) ([]models.ProductIdea, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	templates, ok := ideaTemplates[req.Topic]
	if !ok {
		templates = fallbackIdeaTemplates
	}
	taken := titleSet(existing)
	titles := fresh(templates, taken, req.Topic, req.ProductType, "")
	if len(titles) == 0 {
		titles = fresh(ideaVariations, taken, req.Topic, req.ProductType, "")
	}
	if len(titles) > maxIdeas {
		titles = titles[:maxIdeas]
	}

	niches := []string{req.Topic, "Advanced " + req.Topic, "Specialized " + req.Topic}
	out := make([]models.ProductIdea, 0, len(titles))
	for i, title := range titles {
		seed := req.Region + "|" + req.ProductType + "|" + title
		out = append(out, models.ProductIdea{
			Title:            title,
			Niche:            niches[i%len(niches)],
			Potential:        choose(seed+"|potential", potentials),
			Difficulty:       choose(seed+"|difficulty", difficulties),
			EstimatedRevenue: s.revenueRange(seed, req.Region),
			Description: title + " - A complete program about " + req.Topic + " developed specifically for the " +
				req.Region + " market, with exclusive methodology and proven results.",
			Keywords:    s.keywords(seed, req.Topic),
			Topic:       req.Topic,
			Region:      req.Region,
			ProductType: req.ProductType,
		})
	}
	return out, nil
}

func (s *TemplateSuggester) SuggestTrendingProducts(ctx context.Context, req IdeaRequest, existing []string) ([]models.TrendingProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	templates, ok := trendingTemplates[req.Topic]
	if !ok {
		templates = fallbackTrendingTemplates
	}
	titles := fresh(templates, titleSet(existing), req.Topic, req.ProductType, "")
	if len(titles) > maxTrending {
		titles = titles[:maxTrending]
	}

	out := make([]models.TrendingProduct, 0, len(titles))
	for _, title := range titles {
		seed := req.Region + "|" + title
		out = append(out, models.TrendingProduct{
			Title:       title,
			Category:    req.Topic,
			Trend:       choose(seed+"|trend", trends),
			AvgPrice:    s.price(seed, req.Region),
			Competition: choose(seed+"|competition", competitions),
			Demand:      choose(seed+"|demand", demands),
			Region:      req.Region,
			Description: title + " are trending in the " + req.Region + " market with significant growth",
			Topic:       req.Topic,
			ProductType: req.ProductType,
		})
	}
	return out, nil
}

// KitTitle is the stored title of a kit of kitType for product.
func KitTitle(kitType, product string) string {
	return kitType + " - " + product
}

func (s *TemplateSuggester) SuggestAffiliateKits(ctx context.Context, req KitRequest, existing []string) ([]models.AffiliateKit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	taken := titleSet(existing)
	var types []string
	for _, kt := range kitTypes {
		if !taken[strings.ToLower(KitTitle(kt, req.ProductName))] {
			types = append(types, kt)
		}
	}
	if len(types) > maxKits {
		types = types[:maxKits]
	}

	pool, ok := kitComponents[req.Topic]
	if !ok {
		pool = fallbackKitComponents
	}
	out := make([]models.AffiliateKit, 0, len(types))
	for i, kt := range types {
		title := KitTitle(kt, req.ProductName)
		components := rotate(title, pool, 4+i)
		for j := range components {
			components[j] = expand(components[j], req.Topic, "", req.ProductName)
		}
		out = append(out, models.AffiliateKit{
			Title:          title,
			Components:     components,
			Commission:     choose(title+"|commission", commissions),
			ConversionRate: choose(title+"|conversion", conversions),
			Description: kt + " for affiliates to promote " + req.ProductName + " in the " + req.Topic +
				" niche with optimized materials",
			ProductName: req.ProductName,
			Topic:       req.Topic,
		})
	}
	return out, nil
}
