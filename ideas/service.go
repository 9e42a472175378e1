package ideas

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"creatorhub/dashboard"
	"creatorhub/models"
	"creatorhub/session"

	log "github.com/sirupsen/logrus"
)

// Service asks a ContentSuggester for new entries and stores them in the current profile.
type Service struct {
	dash      *dashboard.Service
	suggester ContentSuggester
}

// NewService builds a Service. A nil suggester means the template suggester.
func NewService(dash *dashboard.Service, suggester ContentSuggester) *Service {
	if suggester == nil {
		suggester = NewTemplateSuggester()
	}
	return &Service{dash: dash, suggester: suggester}
}

func required(fields map[string]string) error {
	var missing []string
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%w: missing %s", session.ErrInvalidInput, strings.Join(missing, ", "))
}

func (s *Service) requireUser() error {
	if _, ok := s.dash.Session().CurrentUser(); !ok {
		return session.ErrNoCurrentUser
	}
	return nil
}

func trimRequest(req IdeaRequest) IdeaRequest {
	return IdeaRequest{
		Topic:       strings.TrimSpace(req.Topic),
		Region:      strings.TrimSpace(req.Region),
		ProductType: strings.TrimSpace(req.ProductType),
	}
}

// GenerateProductIdeas stores up to three new ideas for req and returns them.
func (s *Service) GenerateProductIdeas(ctx context.Context, req IdeaRequest) ([]models.ProductIdea, error) {
	req = trimRequest(req)
	if err := required(map[string]string{"topic": req.Topic, "region": req.Region, "productType": req.ProductType}); err != nil {
		return nil, err
	}
	if err := s.requireUser(); err != nil {
		return nil, err
	}

	var existing []string
	for _, idea := range s.dash.ProductIdeasByTopic(req.Topic, req.Region, req.ProductType) {
		existing = append(existing, idea.Title)
	}
	suggested, err := s.suggester.SuggestProductIdeas(ctx, req, existing)
	if err != nil {
		return nil, fmt.Errorf("suggest product ideas: %w", err)
	}

	out := make([]models.ProductIdea, 0, len(suggested))
	for _, idea := range suggested {
		stored, err := s.dash.AddProductIdea(ctx, idea)
		if err != nil {
			return out, err
		}
		out = append(out, stored)
	}
	log.WithField("topic", req.Topic).Infof("ideas: stored %d product ideas", len(out))
	return out, nil
}

// ResearchTrendingProducts stores up to two new trending products for req.
func (s *Service) ResearchTrendingProducts(ctx context.Context, req IdeaRequest) ([]models.TrendingProduct, error) {
	req = trimRequest(req)
	if err := required(map[string]string{"topic": req.Topic, "region": req.Region, "productType": req.ProductType}); err != nil {
		return nil, err
	}
	if err := s.requireUser(); err != nil {
		return nil, err
	}

	var existing []string
	for _, p := range s.dash.TrendingProductsByTopic(req.Topic, req.Region, req.ProductType) {
		existing = append(existing, p.Title)
	}
	suggested, err := s.suggester.SuggestTrendingProducts(ctx, req, existing)
	if err != nil {
		return nil, fmt.Errorf("suggest trending products: %w", err)
	}

	out := make([]models.TrendingProduct, 0, len(suggested))
	for _, p := range suggested {
		stored, err := s.dash.AddTrendingProduct(ctx, p)
		if err != nil {
			return out, err
		}
		out = append(out, stored)
	}
	log.WithField("topic", req.Topic).Infof("ideas: stored %d trending products", len(out))
	return out, nil
}

// GenerateAffiliateKits stores up to two new kits for the product.
func (s *Service) GenerateAffiliateKits(ctx context.Context, req KitRequest) ([]models.AffiliateKit, error) {
	req = KitRequest{ProductName: strings.TrimSpace(req.ProductName), Topic: strings.TrimSpace(req.Topic)}
	if err := required(map[string]string{"productName": req.ProductName, "topic": req.Topic}); err != nil {
		return nil, err
	}
	if err := s.requireUser(); err != nil {
		return nil, err
	}

	var existing []string
	for _, kit := range s.dash.AffiliateKitsByProduct(req.ProductName, req.Topic) {
		existing = append(existing, kit.Title)
	}
	suggested, err := s.suggester.SuggestAffiliateKits(ctx, req, existing)
	if err != nil {
		return nil, fmt.Errorf("suggest affiliate kits: %w", err)
	}

	out := make([]models.AffiliateKit, 0, len(suggested))
	for _, kit := range suggested {
		stored, err := s.dash.AddAffiliateKit(ctx, kit)
		if err != nil {
			return out, err
		}
		out = append(out, stored)
	}
	log.WithField("product", req.ProductName).Infof("ideas: stored %d affiliate kits", len(out))
	return out, nil
}
