package dashboard

import (
	"context"
	"strings"

	"creatorhub/models"
)

// AddProductIdea stores a generated idea, assigning its id and creation time.
func (s *Service) AddProductIdea(ctx context.Context, idea models.ProductIdea) (models.ProductIdea, error) {
	idea.ID = newID()
	idea.CreatedAt = s.now()
	if idea.Keywords == nil {
		idea.Keywords = []string{}
	}
	err := s.mutate(ctx, func(doc *models.UserDocument) error {
		doc.ProductIdeas = append(doc.ProductIdeas, idea)
		doc.Settings.IsFirstTime = false
		return nil
	})
	if err != nil {
		return models.ProductIdea{}, err
	}
	return idea, nil
}

func (s *Service) AddTrendingProduct(ctx context.Context, product models.TrendingProduct) (models.TrendingProduct, error) {
	product.ID = newID()
	product.CreatedAt = s.now()
	err := s.mutate(ctx, func(doc *models.UserDocument) error {
		doc.TrendingProducts = append(doc.TrendingProducts, product)
		doc.Settings.IsFirstTime = false
		return nil
	})
	if err != nil {
		return models.TrendingProduct{}, err
	}
	return product, nil
}

func (s *Service) AddAffiliateKit(ctx context.Context, kit models.AffiliateKit) (models.AffiliateKit, error) {
	kit.ID = newID()
	kit.CreatedAt = s.now()
	if kit.Components == nil {
		kit.Components = []string{}
	}
	err := s.mutate(ctx, func(doc *models.UserDocument) error {
		doc.AffiliateKits = append(doc.AffiliateKits, kit)
		doc.Settings.IsFirstTime = false
		return nil
	})
	if err != nil {
		return models.AffiliateKit{}, err
	}
	return kit, nil
}

func (s *Service) ProductIdeas() []models.ProductIdea {
	return s.load().ProductIdeas
}

func (s *Service) TrendingProducts() []models.TrendingProduct {
	return s.load().TrendingProducts
}

func (s *Service) AffiliateKits() []models.AffiliateKit {
	return s.load().AffiliateKits
}

// ProductIdeasByTopic matches topic case-insensitively and region/type exactly.
func (s *Service) ProductIdeasByTopic(topic, region, productType string) []models.ProductIdea {
	out := []models.ProductIdea{}
	for _, idea := range s.load().ProductIdeas {
		if strings.EqualFold(idea.Topic, topic) && idea.Region == region && idea.ProductType == productType {
			out = append(out, idea)
		}
	}
	return out
}

func (s *Service) TrendingProductsByTopic(topic, region, productType string) []models.TrendingProduct {
	out := []models.TrendingProduct{}
	for _, p := range s.load().TrendingProducts {
		if strings.EqualFold(p.Topic, topic) && p.Region == region && p.ProductType == productType {
			out = append(out, p)
		}
	}
	return out
}

func (s *Service) AffiliateKitsByProduct(productName, topic string) []models.AffiliateKit {
	out := []models.AffiliateKit{}
	for _, kit := range s.load().AffiliateKits {
		if strings.EqualFold(kit.ProductName, productName) && strings.EqualFold(kit.Topic, topic) {
			out = append(out, kit)
		}
	}
	return out
}
