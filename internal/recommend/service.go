package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/talkincode/slopeselector/internal/domain"
	"github.com/talkincode/slopeselector/internal/gemini"
	"go.uber.org/zap"
)

// TimeLayout is the wire format of created_at
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

const purgeBatchSize = 100

// ErrAIFailed wraps every failure of the AI call
var ErrAIFailed = errors.New("failed to get recommendations from AI after several attempts")

// Generator produces a structured JSON document from a prompt
type Generator interface {
	GenerateJSON(ctx context.Context, req gemini.Request, out interface{}) error
}

// Service ties the AI generator to the recommendation store
type Service struct {
	repo  Repository
	ai    Generator
	now   func() time.Time
	newID func() string
}

// NewService creates a new recommendation service
func NewService(repo Repository, ai Generator) *Service {
	return &Service{
		repo:  repo,
		ai:    ai,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// EnsureUser creates the user if needed
func (s *Service) EnsureUser(ctx context.Context, userID string) error {
	return s.repo.EnsureUser(ctx, userID)
}

// Create asks the AI for recommendations, stores the result and returns it
// decorated with the stored id, prompt and creation time.
func (s *Service) Create(ctx context.Context, userID, prompt string) (*Recommendations, error) {
	if err := s.repo.EnsureUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}

	var rec Recommendations
	err := s.ai.GenerateJSON(ctx, gemini.Request{
		SystemPrompt: SystemPrompt,
		UserPrompt:   prompt,
		Schema:       ResponseSchema,
	}, &rec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAIFailed, err)
	}
	rec.normalize()

	rules, err := s.repo.StoreRules(ctx)
	if err != nil {
		zap.L().Warn("load store rules failed, using defaults", zap.Error(err))
	}

	set := s.buildSet(userID, prompt, &rec, NewStoreNamer(rules))
	if err := s.repo.CreateSet(ctx, set); err != nil {
		return nil, fmt.Errorf("save recommendation set: %w", err)
	}

	rec.ID = set.ID
	rec.PromptText = set.PromptText
	rec.CreatedAt = FormatTime(set.CreatedAt)

	zap.L().Info("recommendation set created",
		zap.String("id", set.ID),
		zap.String("user_id", userID),
		zap.Int("categories", len(set.Categories)))
	return &rec, nil
}

// Get rebuilds the stored document of a set
func (s *Service) Get(ctx context.Context, id string) (*Recommendations, error) {
	set, err := s.repo.GetSet(ctx, id)
	if err != nil {
		return nil, err
	}
	return toRecommendations(set), nil
}

// History lists the user's sets, newest first
func (s *Service) History(ctx context.Context, userID string) ([]HistoryItem, error) {
	sets, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := make([]HistoryItem, 0, len(sets))
	for _, set := range sets {
		items = append(items, HistoryItem{
			ID:         set.ID,
			PromptText: set.PromptText,
			CreatedAt:  FormatTime(set.CreatedAt),
		})
	}
	return items, nil
}

// Delete removes a set and its subtree
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteSet(ctx, id)
}

// PurgeOlderThan deletes every set created before cutoff
func (s *Service) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	total := 0
	for {
		ids, err := s.repo.ListCreatedBefore(ctx, cutoff, purgeBatchSize)
		if err != nil {
			return total, err
		}
		for _, id := range ids {
			if err := s.repo.DeleteSet(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
				return total, fmt.Errorf("delete set %s: %w", id, err)
			}
			total++
		}
		if len(ids) < purgeBatchSize {
			return total, nil
		}
	}
}

// StoreRules lists the retailer rules
func (s *Service) StoreRules(ctx context.Context) ([]domain.StoreRule, error) {
	return s.repo.StoreRules(ctx)
}

// buildSet maps the AI document onto the table rows, keeping array order
// in the position columns.
func (s *Service) buildSet(userID, prompt string, rec *Recommendations, namer *StoreNamer) *domain.RecommendationSet {
	set := &domain.RecommendationSet{
		ID:         s.newID(),
		UserID:     userID,
		PromptText: prompt,
		// postgres keeps microseconds, truncate so the create response
		// matches later reads
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}

	for ci, c := range rec.Categories {
		category := domain.Category{
			ID:                  s.newID(),
			RecommendationSetID: set.ID,
			Position:            ci,
			Title:               c.CategoryTitle,
		}
		for pi, p := range c.Products {
			product := domain.Product{
				ID:          s.newID(),
				CategoryID:  category.ID,
				Position:    pi,
				Name:        p.Name,
				Brand:       p.Brand,
				Description: p.Description,
				PriceRange:  p.PriceRange,
				Highlight:   p.Highlight,
			}
			pos := 0
			for _, text := range p.Pros {
				product.Details = append(product.Details, domain.ProductDetail{
					ID: s.newID(), ProductID: product.ID, Position: pos, Type: domain.DetailPro, Text: text,
				})
				pos++
			}
			for _, text := range p.Cons {
				product.Details = append(product.Details, domain.ProductDetail{
					ID: s.newID(), ProductID: product.ID, Position: pos, Type: domain.DetailCon, Text: text,
				})
				pos++
			}
			for li, url := range p.StoreLink {
				product.StoreLinks = append(product.StoreLinks, domain.StoreLink{
					ID:        s.newID(),
					ProductID: product.ID,
					Position:  li,
					URL:       url,
					StoreName: namer.Name(url),
				})
			}
			category.Products = append(category.Products, product)
		}
		set.Categories = append(set.Categories, category)
	}
	return set
}

// toRecommendations rebuilds the nested document from a loaded set
func toRecommendations(set *domain.RecommendationSet) *Recommendations {
	rec := &Recommendations{
		Categories: make([]Category, 0, len(set.Categories)),
		ID:         set.ID,
		PromptText: set.PromptText,
		CreatedAt:  FormatTime(set.CreatedAt),
	}
	for _, c := range set.Categories {
		category := Category{
			CategoryTitle: c.Title,
			Products:      make([]Product, 0, len(c.Products)),
		}
		for _, p := range c.Products {
			product := Product{
				Name:        p.Name,
				Brand:       p.Brand,
				Description: p.Description,
				PriceRange:  p.PriceRange,
				Pros:        []string{},
				Cons:        []string{},
				Highlight:   p.Highlight,
				StoreLink:   make([]string, 0, len(p.StoreLinks)),
			}
			for _, d := range p.Details {
				switch d.Type {
				case domain.DetailPro:
					product.Pros = append(product.Pros, d.Text)
				case domain.DetailCon:
					product.Cons = append(product.Cons, d.Text)
				}
			}
			for _, l := range p.StoreLinks {
				product.StoreLink = append(product.StoreLink, l.URL)
			}
			category.Products = append(category.Products, product)
		}
		rec.Categories = append(rec.Categories, category)
	}
	return rec
}

// FormatTime renders t as UTC with microsecond precision
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
