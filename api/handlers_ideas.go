package api

import (
	"net/http"

	"creatorhub/ideas"

	"github.com/gin-gonic/gin"
)

// ListProductIdeasHandler returns stored ideas, narrowed by ?topic, ?region and
// ?productType when all three are given.
func ListProductIdeasHandler(c *gin.Context, deps *Deps) {
	topic, region, productType := c.Query("topic"), c.Query("region"), c.Query("productType")
	if topic != "" && region != "" && productType != "" {
		c.JSON(http.StatusOK, deps.Dashboard.ProductIdeasByTopic(topic, region, productType))
		return
	}
	c.JSON(http.StatusOK, deps.Dashboard.ProductIdeas())
}

func GenerateProductIdeasHandler(c *gin.Context, deps *Deps) {
	var req ideas.IdeaRequest
	if !bindJSON(c, &req) {
		return
	}
	generated, err := deps.Ideas.GenerateProductIdeas(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, generated)
}

func ListTrendingHandler(c *gin.Context, deps *Deps) {
	topic, region, productType := c.Query("topic"), c.Query("region"), c.Query("productType")
	if topic != "" && region != "" && productType != "" {
		c.JSON(http.StatusOK, deps.Dashboard.TrendingProductsByTopic(topic, region, productType))
		return
	}
	c.JSON(http.StatusOK, deps.Dashboard.TrendingProducts())
}

func ResearchTrendingHandler(c *gin.Context, deps *Deps) {
	var req ideas.IdeaRequest
	if !bindJSON(c, &req) {
		return
	}
	generated, err := deps.Ideas.ResearchTrendingProducts(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, generated)
}

// ListKitsHandler narrows by ?productName and ?topic when both are given.
func ListKitsHandler(c *gin.Context, deps *Deps) {
	product, topic := c.Query("productName"), c.Query("topic")
	if product != "" && topic != "" {
		c.JSON(http.StatusOK, deps.Dashboard.AffiliateKitsByProduct(product, topic))
		return
	}
	c.JSON(http.StatusOK, deps.Dashboard.AffiliateKits())
}

func GenerateKitsHandler(c *gin.Context, deps *Deps) {
	var req ideas.KitRequest
	if !bindJSON(c, &req) {
		return
	}
	generated, err := deps.Ideas.GenerateAffiliateKits(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, generated)
}
