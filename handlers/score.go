package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-adverse/scoring"
)

type scoreRequest struct {
	Confidence       *float64                  `json:"confidence"`
	Entities         json.RawMessage           `json:"entities"`
	ComponentWeights *scoring.ComponentWeights `json:"componentWeights"`
}

// ScoreArticle scores a single classification and entity extraction.
func (h *Handler) ScoreArticle(c *gin.Context) {
	var request scoreRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.Confidence == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "confidence is required"})
		return
	}

	extraction, err := scoring.ParseExtraction(request.Entities)
	if err != nil {
		scoreError(c, err)
		return
	}

	scorer := h.Scorer
	if request.ComponentWeights != nil {
		cfg := h.Scorer.Config()
		cfg.ComponentWeights = *request.ComponentWeights
		if scorer, err = scoring.NewScorer(cfg); err != nil {
			scoreError(c, err)
			return
		}
	}

	score, err := scorer.Score(*request.Confidence, extraction)
	if err != nil {
		scoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, score)
}

func scoreError(c *gin.Context, err error) {
	var wce *scoring.WeightConfigError
	switch {
	case errors.As(err, &wce):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "invalid_weight_config", "key": wce.Key})
	case errors.Is(err, scoring.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "invalid_input"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
